package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/pkg/database"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
)

// Lot states
const (
	EstadoActivo     = "Activo"
	EstadoVencido    = "Vencido"
	EstadoDevuelto   = "Devuelto"
	EstadoEnTransito = "En tránsito"
)

// Lote represents a received batch of pharmaceutical stock
type Lote struct {
	IDLote           int64     `db:"id_lote" json:"id_lote"`
	NumeroLote       string    `db:"numero_lote" json:"numero_lote"`
	FechaFabricacion time.Time `db:"fecha_fabricacion" json:"fecha_fabricacion"`
	FechaVencimiento time.Time `db:"fecha_vencimiento" json:"fecha_vencimiento"`
	Estado           string    `db:"estado" json:"estado"`
	Observaciones    *string   `db:"observaciones" json:"observaciones,omitempty"`
	IDProveedor      int64     `db:"id_proveedor" json:"id_proveedor"`
	IDBodega         *int64    `db:"id_bodega" json:"id_bodega,omitempty"`
	FechaRegistro    time.Time `db:"fecha_registro" json:"fecha_registro"`
}

// LotFilter narrows lot listings
type LotFilter struct {
	Estado   string
	IDBodega *int64
	Skip     int
	Limit    int
}

// LotRepository handles lot persistence
type LotRepository struct {
	db *database.DB
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *database.DB) *LotRepository {
	return &LotRepository{db: db}
}

// NumberExistsTx reports whether a lot number is already taken within a
// warehouse scope. Lots without a warehouse only collide with other
// warehouse-less lots, mirroring the partial unique indexes on the table.
func (r *LotRepository) NumberExistsTx(ctx context.Context, tx *sqlx.Tx, numero string, idBodega *int64) (bool, error) {
	var exists bool
	if idBodega != nil {
		query := `SELECT EXISTS(SELECT 1 FROM lote WHERE numero_lote = $1 AND id_bodega = $2)`
		if err := tx.GetContext(ctx, &exists, query, numero, *idBodega); err != nil {
			return false, err
		}
		return exists, nil
	}

	query := `SELECT EXISTS(SELECT 1 FROM lote WHERE numero_lote = $1 AND id_bodega IS NULL)`
	if err := tx.GetContext(ctx, &exists, query, numero); err != nil {
		return false, err
	}
	return exists, nil
}

// CreateTx inserts a lot within a transaction
func (r *LotRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, lote *Lote) error {
	if lote.Estado == "" {
		lote.Estado = EstadoActivo
	}

	query := `
		INSERT INTO lote (
			numero_lote, fecha_fabricacion, fecha_vencimiento, estado,
			observaciones, id_proveedor, id_bodega
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id_lote, fecha_registro
	`

	return tx.QueryRowxContext(ctx, query,
		lote.NumeroLote, lote.FechaFabricacion, lote.FechaVencimiento, lote.Estado,
		lote.Observaciones, lote.IDProveedor, lote.IDBodega,
	).Scan(&lote.IDLote, &lote.FechaRegistro)
}

// GetByID gets a lot by ID
func (r *LotRepository) GetByID(ctx context.Context, id int64) (*Lote, error) {
	var lote Lote
	query := `SELECT * FROM lote WHERE id_lote = $1`
	if err := r.db.GetContext(ctx, &lote, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("lote")
		}
		return nil, err
	}
	return &lote, nil
}

// List lists lots with optional filters, newest first
func (r *LotRepository) List(ctx context.Context, filter LotFilter) ([]*Lote, int64, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argN := 1

	if filter.Estado != "" {
		where += fmt.Sprintf(" AND estado = $%d", argN)
		args = append(args, filter.Estado)
		argN++
	}
	if filter.IDBodega != nil {
		where += fmt.Sprintf(" AND id_bodega = $%d", argN)
		args = append(args, *filter.IDBodega)
		argN++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM lote "+where, args...); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf(
		"SELECT * FROM lote %s ORDER BY fecha_registro DESC LIMIT $%d OFFSET $%d",
		where, argN, argN+1,
	)
	args = append(args, limit, filter.Skip)

	var lotes []*Lote
	if err := r.db.SelectContext(ctx, &lotes, query, args...); err != nil {
		return nil, 0, err
	}
	return lotes, total, nil
}
