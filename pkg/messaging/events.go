package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Lot lifecycle events
	EventLoteRecibido    = "inventario.lote.recibido"
	EventLoteDistribuido = "inventario.lote.distribuido"

	// Capacity events
	EventCapacidadExcedida = "inventario.capacidad.excedida"

	// Audit events
	EventAuditoriaCreada = "auditoria.registro.creado"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventario.events"
	ExchangeAuditEvents     = "auditoria.events"
)

// Notification priorities, consumed by the notification service fan-out
const (
	PriorityBaja    = "baja"
	PriorityNormal  = "normal"
	PriorityAlta    = "alta"
	PriorityCritica = "critica"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// LoteRecibidoEvent is published after a reception commits
type LoteRecibidoEvent struct {
	IDLote      int64   `json:"id_lote"`
	NumeroLote  string  `json:"numero_lote"`
	IDBodega    int64   `json:"id_bodega"`
	IDSucursal  int64   `json:"id_sucursal"`
	IDProveedor int64   `json:"id_proveedor"`
	Productos   []int64 `json:"productos"`
	Cantidad    int     `json:"cantidad_total"`
	IDUsuario   string  `json:"id_usuario"`
	Prioridad   string  `json:"prioridad"`
}

// LoteDistribuidoEvent is published after a distributed reception commits
type LoteDistribuidoEvent struct {
	NumeroLoteBase string   `json:"numero_lote_base"`
	LotesCreados   []string `json:"lotes_creados"`
	IDSucursal     int64    `json:"id_sucursal"`
	TotalProductos int      `json:"total_productos"`
	Bodegas        []int64  `json:"bodegas_utilizadas"`
	IDUsuario      string   `json:"id_usuario"`
	Prioridad      string   `json:"prioridad"`
}

// CapacidadExcedidaEvent is published when a reception is rejected for lack of room
type CapacidadExcedidaEvent struct {
	IDBodega   int64  `json:"id_bodega"`
	Bodega     string `json:"bodega"`
	IDSucursal int64  `json:"id_sucursal"`
	Disponible int    `json:"disponible"`
	Requerido  int    `json:"requerido"`
	Exceso     int    `json:"exceso"`
	Prioridad  string `json:"prioridad"`
}
