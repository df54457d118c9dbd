package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/pkg/actor"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
)

// Availability reports a warehouse's capacity, occupancy and free room. The
// readout runs under the warehouse lock so it never observes a half-committed
// reception.
func (s *ReceptionService) Availability(ctx context.Context, idBodega int64, act *actor.Actor) (*CapacityStatus, error) {
	if act == nil {
		return nil, errors.Forbidden("se requiere un usuario autenticado")
	}

	var status *CapacityStatus
	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		bodega, st, err := s.lockedStatus(ctx, tx, idBodega)
		if err != nil {
			return err
		}
		if !act.InBranch(bodega.IDSucursal) {
			return errors.Forbidden("la bodega pertenece a otra sucursal")
		}
		status = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Alternatives lists the other operational warehouses of the branch with
// their fresh availability, roomiest first. Advisory output for planning a
// distributed reception.
func (s *ReceptionService) Alternatives(ctx context.Context, idBodega int64, act *actor.Actor) ([]*AlternativeWarehouse, error) {
	if act == nil {
		return nil, errors.Forbidden("se requiere un usuario autenticado")
	}

	var alternatives []*AlternativeWarehouse
	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		bodega, _, err := s.lockedStatus(ctx, tx, idBodega)
		if err != nil {
			return err
		}
		if !act.InBranch(bodega.IDSucursal) {
			return errors.Forbidden("la bodega pertenece a otra sucursal")
		}
		alternatives, err = s.findAlternativesTx(ctx, tx, bodega)
		return err
	})
	if err != nil {
		return nil, err
	}
	return alternatives, nil
}
