package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/pkg/database"
)

// Movement types
const (
	MovimientoEntrada       = "Entrada"
	MovimientoSalida        = "Salida"
	MovimientoTransferencia = "Transferencia"
	MovimientoDevolucion    = "Devolución"
	MovimientoAjuste        = "Ajuste"
)

// Movimiento represents an immutable stock movement record
type Movimiento struct {
	IDMovimiento      int64     `db:"id_movimiento" json:"id_movimiento"`
	TipoMovimiento    string    `db:"tipo_movimiento" json:"tipo_movimiento"`
	Cantidad          int       `db:"cantidad" json:"cantidad"`
	IDProducto        int64     `db:"id_producto" json:"id_producto"`
	IDUsuario         string    `db:"id_usuario" json:"id_usuario"`
	IDSucursalOrigen  *int64    `db:"id_sucursal_origen" json:"id_sucursal_origen,omitempty"`
	IDSucursalDestino *int64    `db:"id_sucursal_destino" json:"id_sucursal_destino,omitempty"`
	FechaMovimiento   time.Time `db:"fecha_movimiento" json:"fecha_movimiento"`
}

// MovementRepository handles stock movement persistence
type MovementRepository struct {
	db *database.DB
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *database.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// CreateTx inserts a stock movement within a transaction
func (r *MovementRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, m *Movimiento) error {
	query := `
		INSERT INTO movimientoinventario (
			tipo_movimiento, cantidad, id_producto, id_usuario,
			id_sucursal_origen, id_sucursal_destino
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_movimiento, fecha_movimiento
	`

	return tx.QueryRowxContext(ctx, query,
		m.TipoMovimiento, m.Cantidad, m.IDProducto, m.IDUsuario,
		m.IDSucursalOrigen, m.IDSucursalDestino,
	).Scan(&m.IDMovimiento, &m.FechaMovimiento)
}

// ListByProduct lists movements for a product, newest first
func (r *MovementRepository) ListByProduct(ctx context.Context, idProducto int64) ([]*Movimiento, error) {
	var movimientos []*Movimiento
	query := `SELECT * FROM movimientoinventario WHERE id_producto = $1 ORDER BY fecha_movimiento DESC`
	if err := r.db.SelectContext(ctx, &movimientos, query, idProducto); err != nil {
		return nil, err
	}
	return movimientos, nil
}
