// Package events publishes inventory domain events to the message broker.
// Delivery to end users (websockets, email) is owned by the notification
// service; this side only emits.
package events

import (
	"context"

	"github.com/farmatrack/farmatrack-backend/pkg/logger"
	"github.com/farmatrack/farmatrack-backend/pkg/messaging"
)

// Publisher publishes inventory events. A nil Publisher (broker unavailable
// at startup) silently drops events: notifications are best-effort and never
// affect reception correctness.
type Publisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewPublisher creates an inventory event publisher on the inventory exchange
func NewPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*Publisher, error) {
	pub, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "inventory-service", log)
	if err != nil {
		return nil, err
	}
	return &Publisher{publisher: pub, logger: log}, nil
}

func (p *Publisher) publish(ctx context.Context, eventType string, data interface{}) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("event publish failed, dropping")
	}
}

// LoteRecibido announces a committed reception
func (p *Publisher) LoteRecibido(ctx context.Context, ev messaging.LoteRecibidoEvent) {
	ev.Prioridad = messaging.PriorityNormal
	p.publish(ctx, messaging.EventLoteRecibido, ev)
}

// LoteDistribuido announces a committed distributed reception
func (p *Publisher) LoteDistribuido(ctx context.Context, ev messaging.LoteDistribuidoEvent) {
	ev.Prioridad = messaging.PriorityNormal
	p.publish(ctx, messaging.EventLoteDistribuido, ev)
}

// CapacidadExcedida announces a reception rejected for lack of room
func (p *Publisher) CapacidadExcedida(ctx context.Context, ev messaging.CapacidadExcedidaEvent) {
	ev.Prioridad = messaging.PriorityAlta
	p.publish(ctx, messaging.EventCapacidadExcedida, ev)
}
