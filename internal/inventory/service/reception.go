// Package service implements the capacity-aware lot reception engine: the
// occupancy and capacity checks, the distribution suggester and the two
// reception orchestrators (single-warehouse and distributed).
//
// Correctness rests on one rule: every capacity decision is made under an
// exclusive lock on the warehouse row, inside the same transaction that
// performs the writes depending on it. Two concurrent receptions against the
// same warehouse therefore serialize, and their combined accepted quantity
// can never exceed the warehouse capacity.
package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/events"
	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
	"github.com/farmatrack/farmatrack-backend/pkg/actor"
	"github.com/farmatrack/farmatrack-backend/pkg/cache"
	"github.com/farmatrack/farmatrack-backend/pkg/database"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/logger"
	"github.com/farmatrack/farmatrack-backend/pkg/messaging"
)

// ReceptionItem is one line item of an incoming lot
type ReceptionItem struct {
	NombreComercial   string  `json:"nombre_comercial" validate:"required"`
	NombreGenerico    *string `json:"nombre_generico,omitempty"`
	CodigoInterno     *string `json:"codigo_interno,omitempty"`
	CodigoBarras      *string `json:"codigo_barras,omitempty"`
	FormaFarmaceutica string  `json:"forma_farmaceutica" validate:"required"`
	Concentracion     string  `json:"concentracion" validate:"required"`
	Presentacion      string  `json:"presentacion" validate:"required"`
	UnidadMedida      string  `json:"unidad_medida" validate:"required"`
	Cantidad          int     `json:"cantidad" validate:"required,gt=0"`
	StockMinimo       int     `json:"stock_minimo" validate:"gte=0"`
	StockMaximo       int     `json:"stock_maximo" validate:"gte=0"`
}

// ReceptionLotHeader carries the lot-level fields of a reception
type ReceptionLotHeader struct {
	IDProveedor      int64     `json:"id_proveedor" validate:"required"`
	IDBodega         *int64    `json:"id_bodega" validate:"required"`
	FechaFabricacion time.Time `json:"fecha_fabricacion" validate:"required"`
	FechaVencimiento time.Time `json:"fecha_vencimiento" validate:"required"`
	Observaciones    *string   `json:"observaciones,omitempty"`
}

// ReceptionRequest is the payload of a single-warehouse reception
type ReceptionRequest struct {
	Lote  ReceptionLotHeader `json:"lote"`
	Items []ReceptionItem    `json:"items" validate:"required,min=1,dive"`
}

// ReceptionResult is the outcome of a successful reception
type ReceptionResult struct {
	Lote             *repository.Lote `json:"lote"`
	ProductosCreados []int64          `json:"productos_creados"`
}

// ReceptionService orchestrates lot receptions
type ReceptionService struct {
	db         *database.DB
	warehouses *repository.WarehouseRepository
	lots       *repository.LotRepository
	products   *repository.ProductRepository
	movements  *repository.MovementRepository
	audits     *repository.AuditRepository
	suppliers  *repository.SupplierRepository
	generator  *LotNumberGenerator
	cache      *cache.Cache
	events     *events.Publisher
	logger     *logger.Logger
}

// NewReceptionService creates a reception service with its repositories
func NewReceptionService(db *database.DB, c *cache.Cache, pub *events.Publisher, log *logger.Logger) *ReceptionService {
	lots := repository.NewLotRepository(db)
	return &ReceptionService{
		db:         db,
		warehouses: repository.NewWarehouseRepository(db),
		lots:       lots,
		products:   repository.NewProductRepository(db),
		movements:  repository.NewMovementRepository(db),
		audits:     repository.NewAuditRepository(db),
		suppliers:  repository.NewSupplierRepository(db),
		generator:  NewLotNumberGenerator(lots),
		cache:      c,
		events:     pub,
		logger:     log.WithComponent("reception"),
	}
}

func totalQuantity(items []ReceptionItem) int {
	total := 0
	for _, item := range items {
		total += item.Cantidad
	}
	return total
}

func (s *ReceptionService) validateHeader(ctx context.Context, header *ReceptionLotHeader, items []ReceptionItem) error {
	if len(items) == 0 {
		return errors.BadRequest("la recepción requiere al menos un producto")
	}
	if header.FechaFabricacion.After(header.FechaVencimiento) {
		return errors.BadRequest("la fecha de fabricación no puede ser posterior a la fecha de vencimiento")
	}

	exists, err := s.suppliers.Exists(ctx, header.IDProveedor)
	if err != nil {
		return err
	}
	if !exists {
		return errors.BadRequest("el proveedor indicado no existe")
	}

	return nil
}

// Receive records an incoming lot into a single warehouse. The capacity
// check, lot/product/movement creation and the audit record form one
// transaction: a failure at any step leaves no trace. On a capacity conflict
// it returns a CapacityConflictError with a distribution proposal, or a
// BranchDeficitError when the whole branch lacks room.
func (s *ReceptionService) Receive(ctx context.Context, req *ReceptionRequest, act *actor.Actor) (*ReceptionResult, error) {
	if act == nil {
		return nil, errors.Forbidden("se requiere un usuario autenticado")
	}
	if req.Lote.IDBodega == nil {
		return nil, errors.BadRequest("la recepción requiere una bodega destino")
	}
	if err := s.validateHeader(ctx, &req.Lote, req.Items); err != nil {
		return nil, err
	}

	requested := totalQuantity(req.Items)

	var (
		result        *ReceptionResult
		idSucursal    int64
		exceededEvent *messaging.CapacidadExcedidaEvent
	)

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		bodega, status, err := s.lockedStatus(ctx, tx, *req.Lote.IDBodega)
		if err != nil {
			return err
		}
		if !act.InBranch(bodega.IDSucursal) {
			return errors.Forbidden("la bodega pertenece a otra sucursal")
		}
		idSucursal = bodega.IDSucursal

		if rej := ValidateCapacity(bodega.Capacidad, status.Ocupacion, requested); rej != nil {
			conflictErr, err := s.buildConflictTx(ctx, tx, bodega, rej)
			if err != nil {
				return err
			}
			exceededEvent = &messaging.CapacidadExcedidaEvent{
				IDBodega:   bodega.IDBodega,
				Bodega:     bodega.Nombre,
				IDSucursal: bodega.IDSucursal,
				Disponible: rej.Disponible,
				Requerido:  rej.Requerido,
				Exceso:     rej.Exceso,
			}
			return conflictErr
		}

		numero, err := s.generator.GenerateTx(ctx, tx, req.Lote.IDBodega)
		if err != nil {
			return err
		}

		lote, productIDs, err := s.createLotTx(ctx, tx, numero, &req.Lote, req.Items, bodega, act)
		if err != nil {
			return err
		}

		detalle := map[string]interface{}{
			"numero_lote":    lote.NumeroLote,
			"id_bodega":      bodega.IDBodega,
			"productos":      productIDs,
			"cantidad_total": requested,
		}
		audit := &repository.Auditoria{
			Entidad:    "lote",
			IDRegistro: &lote.IDLote,
			Accion:     "recepcion_lote",
			IDUsuario:  act.ID,
		}
		if err := s.audits.CreateTx(ctx, tx, audit, detalle); err != nil {
			return err
		}

		result = &ReceptionResult{Lote: lote, ProductosCreados: productIDs}
		return nil
	})
	if err != nil {
		if exceededEvent != nil {
			s.events.CapacidadExcedida(ctx, *exceededEvent)
		}
		return nil, err
	}

	s.afterReceptionCommit(ctx)
	s.events.LoteRecibido(ctx, messaging.LoteRecibidoEvent{
		IDLote:      result.Lote.IDLote,
		NumeroLote:  result.Lote.NumeroLote,
		IDBodega:    *req.Lote.IDBodega,
		IDSucursal:  idSucursal,
		IDProveedor: req.Lote.IDProveedor,
		Productos:   result.ProductosCreados,
		Cantidad:    requested,
		IDUsuario:   act.ID,
	})

	s.logger.Info().
		Str("numero_lote", result.Lote.NumeroLote).
		Int64("id_bodega", *req.Lote.IDBodega).
		Int("cantidad", requested).
		Int("productos", len(result.ProductosCreados)).
		Msg("lote recibido")

	return result, nil
}

// buildConflictTx assembles the 409 payload for a failed capacity check:
// either a distribution proposal across siblings or a branch-wide deficit.
func (s *ReceptionService) buildConflictTx(ctx context.Context, tx *sqlx.Tx, bodega *repository.Bodega, rej *CapacityRejection) (error, error) {
	alternatives, err := s.findAlternativesTx(ctx, tx, bodega)
	if err != nil {
		return nil, err
	}

	altTotal := 0
	for _, alt := range alternatives {
		if alt.Disponible > 0 {
			altTotal += alt.Disponible
		}
	}

	branchAvailable := rej.Disponible + altTotal
	if branchAvailable < rej.Requerido {
		// Advisory summary number: the sibling availabilities were each read
		// under their own lock, but the sum itself is not re-verified.
		return &BranchDeficitError{
			CapacidadDisponibleSucursal: branchAvailable,
			CapacidadRequerida:          rej.Requerido,
			Deficit:                     rej.Requerido - branchAvailable,
			Mensaje:                     "la sucursal no tiene capacidad suficiente para recibir el lote",
		}, nil
	}

	allocations, _ := SuggestDistribution(alternatives, rej.Exceso)
	secundarias := make([]SugerenciaBodega, 0, len(allocations))
	for _, a := range allocations {
		secundarias = append(secundarias, SugerenciaBodega{
			IDBodega:         a.IDBodega,
			Nombre:           a.Nombre,
			Disponible:       a.Disponible,
			CantidadSugerida: a.Cantidad,
		})
	}

	return &CapacityConflictError{
		BodegaPrincipal: SugerenciaBodega{
			IDBodega:         bodega.IDBodega,
			Nombre:           bodega.Nombre,
			Disponible:       rej.Disponible,
			CantidadSugerida: rej.Disponible,
		},
		BodegasSecundarias: secundarias,
		Mensaje:            "la bodega no tiene capacidad suficiente; se sugiere distribuir el lote entre las bodegas indicadas",
	}, nil
}

// createLotTx persists a lot with its products and one Entrada movement per
// product, all within the caller's transaction.
func (s *ReceptionService) createLotTx(ctx context.Context, tx *sqlx.Tx, numero string, header *ReceptionLotHeader, items []ReceptionItem, bodega *repository.Bodega, act *actor.Actor) (*repository.Lote, []int64, error) {
	idBodega := bodega.IDBodega
	lote := &repository.Lote{
		NumeroLote:       numero,
		FechaFabricacion: header.FechaFabricacion,
		FechaVencimiento: header.FechaVencimiento,
		Estado:           repository.EstadoActivo,
		Observaciones:    header.Observaciones,
		IDProveedor:      header.IDProveedor,
		IDBodega:         &idBodega,
	}
	if err := s.lots.CreateTx(ctx, tx, lote); err != nil {
		return nil, nil, err
	}

	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		producto := &repository.Producto{
			NombreComercial:    item.NombreComercial,
			NombreGenerico:     item.NombreGenerico,
			CodigoInterno:      item.CodigoInterno,
			CodigoBarras:       item.CodigoBarras,
			FormaFarmaceutica:  item.FormaFarmaceutica,
			Concentracion:      item.Concentracion,
			Presentacion:       item.Presentacion,
			UnidadMedida:       item.UnidadMedida,
			CantidadTotal:      item.Cantidad,
			CantidadDisponible: item.Cantidad,
			StockMinimo:        item.StockMinimo,
			StockMaximo:        item.StockMaximo,
			IDLote:             lote.IDLote,
			Activo:             true,
		}
		if err := s.products.CreateTx(ctx, tx, producto); err != nil {
			return nil, nil, err
		}
		productIDs = append(productIDs, producto.IDProducto)

		destino := bodega.IDSucursal
		movimiento := &repository.Movimiento{
			TipoMovimiento:    repository.MovimientoEntrada,
			Cantidad:          item.Cantidad,
			IDProducto:        producto.IDProducto,
			IDUsuario:         act.ID,
			IDSucursalDestino: &destino,
		}
		if err := s.movements.CreateTx(ctx, tx, movimiento); err != nil {
			return nil, nil, err
		}
	}

	return lote, productIDs, nil
}

// afterReceptionCommit invalidates read caches. Best-effort: failures here
// leave stale caches, never broken data.
func (s *ReceptionService) afterReceptionCommit(ctx context.Context) {
	s.cache.InvalidateEntity(ctx, "lotes")
	s.cache.InvalidateEntity(ctx, "productos")
}
