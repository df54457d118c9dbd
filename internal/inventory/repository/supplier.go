package repository

import (
	"context"
	"database/sql"

	"github.com/farmatrack/farmatrack-backend/pkg/database"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
)

// Proveedor represents a supplier
type Proveedor struct {
	IDProveedor int64   `db:"id_proveedor" json:"id_proveedor"`
	Nombre      string  `db:"nombre" json:"nombre"`
	NIT         *string `db:"nit" json:"nit,omitempty"`
	Telefono    *string `db:"telefono" json:"telefono,omitempty"`
	Correo      *string `db:"correo" json:"correo,omitempty"`
	Activo      bool    `db:"activo" json:"activo"`
}

// SupplierRepository handles supplier lookups. Supplier CRUD lives in the
// admin service; reception only needs existence checks.
type SupplierRepository struct {
	db *database.DB
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *database.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// GetByID gets a supplier by ID
func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*Proveedor, error) {
	var proveedor Proveedor
	query := `SELECT * FROM proveedor WHERE id_proveedor = $1`
	if err := r.db.GetContext(ctx, &proveedor, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("proveedor")
		}
		return nil, err
	}
	return &proveedor, nil
}

// Exists reports whether an active supplier with the given ID exists
func (r *SupplierRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM proveedor WHERE id_proveedor = $1 AND activo = true)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}
