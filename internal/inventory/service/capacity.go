package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
)

// CapacityStatus describes a warehouse's physical load at a point in time.
type CapacityStatus struct {
	IDBodega            int64   `json:"id_bodega"`
	Nombre              string  `json:"nombre"`
	Capacidad           int     `json:"capacidad"`
	Ocupacion           int     `json:"ocupacion"`
	Disponible          int     `json:"disponible"`
	PorcentajeOcupacion float64 `json:"porcentaje_ocupacion"`
}

// CapacityRejection carries the numbers behind a failed capacity check.
type CapacityRejection struct {
	Disponible int
	Requerido  int
	Exceso     int
}

// ValidateCapacity compares a requested quantity against free room. Returns
// nil when the warehouse can hold the quantity. Pure: callers are responsible
// for computing ocupacion under the warehouse row lock first.
func ValidateCapacity(capacidad, ocupacion, requerido int) *CapacityRejection {
	disponible := capacidad - ocupacion
	if requerido <= disponible {
		return nil
	}
	return &CapacityRejection{
		Disponible: disponible,
		Requerido:  requerido,
		Exceso:     requerido - disponible,
	}
}

// lockedStatus locks the warehouse row and computes its occupancy inside the
// transaction. Every capacity-sensitive operation goes through this single
// choke point so the lock-then-aggregate discipline cannot be skipped.
func (s *ReceptionService) lockedStatus(ctx context.Context, tx *sqlx.Tx, idBodega int64) (*repository.Bodega, *CapacityStatus, error) {
	bodega, err := s.warehouses.GetForUpdateTx(ctx, tx, idBodega)
	if err != nil {
		return nil, nil, err
	}

	ocupacion, err := s.warehouses.OccupancyTx(ctx, tx, bodega.IDBodega)
	if err != nil {
		return nil, nil, err
	}

	return bodega, newCapacityStatus(bodega, ocupacion), nil
}

func newCapacityStatus(bodega *repository.Bodega, ocupacion int) *CapacityStatus {
	status := &CapacityStatus{
		IDBodega:   bodega.IDBodega,
		Nombre:     bodega.Nombre,
		Capacidad:  bodega.Capacidad,
		Ocupacion:  ocupacion,
		Disponible: bodega.Capacidad - ocupacion,
	}
	if bodega.Capacidad > 0 {
		status.PorcentajeOcupacion = float64(ocupacion) / float64(bodega.Capacidad) * 100
	}
	return status
}
