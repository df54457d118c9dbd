package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/pkg/database"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
)

// Bodega represents a physical warehouse belonging to a branch
type Bodega struct {
	IDBodega   int64  `db:"id_bodega" json:"id_bodega"`
	Nombre     string `db:"nombre" json:"nombre"`
	Tipo       string `db:"tipo" json:"tipo"`
	Capacidad  int    `db:"capacidad" json:"capacidad"`
	Operativa  bool   `db:"operativa" json:"operativa"`
	IDSucursal int64  `db:"id_sucursal" json:"id_sucursal"`
}

// WarehouseRepository handles warehouse persistence and occupancy queries
type WarehouseRepository struct {
	db *database.DB
}

// NewWarehouseRepository creates a new warehouse repository
func NewWarehouseRepository(db *database.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// GetByID gets a warehouse by ID
func (r *WarehouseRepository) GetByID(ctx context.Context, id int64) (*Bodega, error) {
	var bodega Bodega
	query := `SELECT * FROM bodega WHERE id_bodega = $1`
	if err := r.db.GetContext(ctx, &bodega, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("bodega")
		}
		return nil, err
	}
	return &bodega, nil
}

// GetForUpdateTx gets a warehouse acquiring an exclusive row lock.
// The lock serializes concurrent capacity checks on the same warehouse and is
// held until the surrounding transaction commits or rolls back.
func (r *WarehouseRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int64) (*Bodega, error) {
	var bodega Bodega
	query := `SELECT * FROM bodega WHERE id_bodega = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &bodega, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("bodega")
		}
		return nil, err
	}
	return &bodega, nil
}

// OccupancyTx computes the current physical occupancy of a warehouse: the sum
// of cantidad_total over products whose lot sits in the warehouse with estado
// Activo or En tránsito. Must run in the same transaction that locked the
// warehouse row, after the lock.
func (r *WarehouseRepository) OccupancyTx(ctx context.Context, tx *sqlx.Tx, idBodega int64) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(p.cantidad_total), 0)
		FROM producto p
		JOIN lote l ON l.id_lote = p.id_lote
		WHERE l.id_bodega = $1 AND l.estado IN ('Activo', 'En tránsito')
	`
	if err := tx.GetContext(ctx, &total, query, idBodega); err != nil {
		return 0, err
	}
	return total, nil
}

// ListSiblingsTx lists the other operational warehouses in the same branch,
// ordered by ascending id so callers can lock them in a stable order.
func (r *WarehouseRepository) ListSiblingsTx(ctx context.Context, tx *sqlx.Tx, idSucursal, excludeID int64) ([]*Bodega, error) {
	var bodegas []*Bodega
	query := `
		SELECT * FROM bodega
		WHERE id_sucursal = $1 AND id_bodega != $2 AND operativa = true
		ORDER BY id_bodega
	`
	if err := tx.SelectContext(ctx, &bodegas, query, idSucursal, excludeID); err != nil {
		return nil, err
	}
	return bodegas, nil
}

// ListByBranch lists the operational warehouses of a branch
func (r *WarehouseRepository) ListByBranch(ctx context.Context, idSucursal int64) ([]*Bodega, error) {
	var bodegas []*Bodega
	query := `SELECT * FROM bodega WHERE id_sucursal = $1 AND operativa = true ORDER BY id_bodega`
	if err := r.db.SelectContext(ctx, &bodegas, query, idSucursal); err != nil {
		return nil, err
	}
	return bodegas, nil
}
