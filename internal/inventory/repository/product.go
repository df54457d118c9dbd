package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/pkg/database"
)

// Producto represents a line item of a lot
type Producto struct {
	IDProducto         int64   `db:"id_producto" json:"id_producto"`
	NombreComercial    string  `db:"nombre_comercial" json:"nombre_comercial"`
	NombreGenerico     *string `db:"nombre_generico" json:"nombre_generico,omitempty"`
	CodigoInterno      *string `db:"codigo_interno" json:"codigo_interno,omitempty"`
	CodigoBarras       *string `db:"codigo_barras" json:"codigo_barras,omitempty"`
	FormaFarmaceutica  string  `db:"forma_farmaceutica" json:"forma_farmaceutica"`
	Concentracion      string  `db:"concentracion" json:"concentracion"`
	Presentacion       string  `db:"presentacion" json:"presentacion"`
	UnidadMedida       string  `db:"unidad_medida" json:"unidad_medida"`
	CantidadTotal      int     `db:"cantidad_total" json:"cantidad_total"`
	CantidadDisponible int     `db:"cantidad_disponible" json:"cantidad_disponible"`
	StockMinimo        int     `db:"stock_minimo" json:"stock_minimo"`
	StockMaximo        int     `db:"stock_maximo" json:"stock_maximo"`
	IDLote             int64   `db:"id_lote" json:"id_lote"`
	Activo             bool    `db:"activo" json:"activo"`
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateTx inserts a product within a transaction
func (r *ProductRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, p *Producto) error {
	query := `
		INSERT INTO producto (
			nombre_comercial, nombre_generico, codigo_interno, codigo_barras,
			forma_farmaceutica, concentracion, presentacion, unidad_medida,
			cantidad_total, cantidad_disponible, stock_minimo, stock_maximo,
			id_lote, activo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id_producto
	`

	return tx.QueryRowxContext(ctx, query,
		p.NombreComercial, p.NombreGenerico, p.CodigoInterno, p.CodigoBarras,
		p.FormaFarmaceutica, p.Concentracion, p.Presentacion, p.UnidadMedida,
		p.CantidadTotal, p.CantidadDisponible, p.StockMinimo, p.StockMaximo,
		p.IDLote, p.Activo,
	).Scan(&p.IDProducto)
}

// ListByLot lists the products belonging to a lot
func (r *ProductRepository) ListByLot(ctx context.Context, idLote int64) ([]*Producto, error) {
	var productos []*Producto
	query := `SELECT * FROM producto WHERE id_lote = $1 ORDER BY id_producto`
	if err := r.db.SelectContext(ctx, &productos, query, idLote); err != nil {
		return nil, err
	}
	return productos, nil
}
