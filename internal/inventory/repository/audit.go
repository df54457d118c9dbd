package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/pkg/database"
)

// Audit outcomes
const (
	ResultadoExito = "Éxito"
	ResultadoError = "Error"
)

// Auditoria represents an append-only audit record
type Auditoria struct {
	IDAuditoria int64           `db:"id_auditoria" json:"id_auditoria"`
	Entidad     string          `db:"entidad" json:"entidad"`
	IDRegistro  *int64          `db:"id_registro" json:"id_registro,omitempty"`
	Accion      string          `db:"accion" json:"accion"`
	Detalle     json.RawMessage `db:"detalle" json:"detalle,omitempty"`
	Resultado   string          `db:"resultado" json:"resultado"`
	IDUsuario   string          `db:"id_usuario" json:"id_usuario"`
	Fecha       time.Time       `db:"fecha" json:"fecha"`
}

// AuditRepository handles audit record persistence
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx inserts an audit record within a transaction. Detalle accepts any
// JSON-serializable value.
func (r *AuditRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, a *Auditoria, detalle interface{}) error {
	if detalle != nil {
		raw, err := json.Marshal(detalle)
		if err != nil {
			return err
		}
		a.Detalle = raw
	}
	if a.Resultado == "" {
		a.Resultado = ResultadoExito
	}

	query := `
		INSERT INTO auditoria (entidad, id_registro, accion, detalle, resultado, id_usuario)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id_auditoria, fecha
	`

	return tx.QueryRowxContext(ctx, query,
		a.Entidad, a.IDRegistro, a.Accion, []byte(a.Detalle), a.Resultado, a.IDUsuario,
	).Scan(&a.IDAuditoria, &a.Fecha)
}
