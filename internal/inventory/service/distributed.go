package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
	"github.com/farmatrack/farmatrack-backend/pkg/actor"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/messaging"
)

// DistributedLotHeader carries the shared fields of a distributed reception
type DistributedLotHeader struct {
	IDProveedor      int64     `json:"id_proveedor" validate:"required"`
	FechaFabricacion time.Time `json:"fecha_fabricacion" validate:"required"`
	FechaVencimiento time.Time `json:"fecha_vencimiento" validate:"required"`
	Observaciones    *string   `json:"observaciones,omitempty"`
}

// DistributionEntry assigns line items to one warehouse
type DistributionEntry struct {
	IDBodega int64           `json:"id_bodega" validate:"required"`
	Items    []ReceptionItem `json:"items" validate:"required,min=1,dive"`
}

// DistributedReceptionRequest is the payload of a multi-warehouse reception
type DistributedReceptionRequest struct {
	LoteBase       DistributedLotHeader `json:"lote_base"`
	Distribuciones []DistributionEntry  `json:"distribuciones" validate:"required,min=1,dive"`
}

// DistributedReceptionResult is the outcome of a successful distributed reception
type DistributedReceptionResult struct {
	NumeroLoteBase    string   `json:"numero_lote_base"`
	LotesCreados      []string `json:"lotes_creados"`
	ProductosCreados  []int64  `json:"productos_creados"`
	TotalProductos    int      `json:"total_productos"`
	BodegasUtilizadas []int64  `json:"bodegas_utilizadas"`
}

// warehousePrefix derives the sub-lot suffix from a warehouse name: its first
// three letters, uppercased.
func warehousePrefix(nombre string) string {
	runes := []rune(strings.ToUpper(nombre))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

// ReceiveDistributed records a lot split across several warehouses of one
// branch. Client-side proposals go stale, so every warehouse's capacity is
// re-validated under its own row lock before any write; a single failed
// re-validation aborts the whole call with zero sub-lots created. Warehouses
// are locked in ascending id order so concurrent distributed receptions over
// overlapping warehouse sets cannot deadlock.
func (s *ReceptionService) ReceiveDistributed(ctx context.Context, req *DistributedReceptionRequest, act *actor.Actor) (*DistributedReceptionResult, error) {
	if act == nil {
		return nil, errors.Forbidden("se requiere un usuario autenticado")
	}
	if len(req.Distribuciones) == 0 {
		return nil, errors.BadRequest("la distribución requiere al menos una bodega")
	}
	if req.LoteBase.FechaFabricacion.After(req.LoteBase.FechaVencimiento) {
		return nil, errors.BadRequest("la fecha de fabricación no puede ser posterior a la fecha de vencimiento")
	}

	seen := make(map[int64]bool, len(req.Distribuciones))
	for _, entry := range req.Distribuciones {
		if len(entry.Items) == 0 {
			return nil, errors.BadRequest("cada distribución requiere al menos un producto")
		}
		if seen[entry.IDBodega] {
			return nil, errors.BadRequest("la distribución repite una bodega")
		}
		seen[entry.IDBodega] = true
	}

	exists, err := s.suppliers.Exists(ctx, req.LoteBase.IDProveedor)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.BadRequest("el proveedor indicado no existe")
	}

	var (
		result     *DistributedReceptionResult
		idSucursal int64
	)

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		bodegas, err := s.lockWarehousesTx(ctx, tx, req.Distribuciones)
		if err != nil {
			return err
		}

		idSucursal = bodegas[req.Distribuciones[0].IDBodega].IDSucursal
		for _, bodega := range bodegas {
			if bodega.IDSucursal != idSucursal {
				return errors.BadRequest("todas las bodegas deben pertenecer a la misma sucursal")
			}
			if !act.InBranch(bodega.IDSucursal) {
				return errors.Forbidden("la bodega pertenece a otra sucursal")
			}
		}

		for _, entry := range req.Distribuciones {
			bodega := bodegas[entry.IDBodega]
			ocupacion, err := s.warehouses.OccupancyTx(ctx, tx, bodega.IDBodega)
			if err != nil {
				return err
			}
			if rej := ValidateCapacity(bodega.Capacidad, ocupacion, totalQuantity(entry.Items)); rej != nil {
				return &RevalidationConflictError{
					IDBodega:   bodega.IDBodega,
					Bodega:     bodega.Nombre,
					Disponible: rej.Disponible,
					Requerido:  rej.Requerido,
				}
			}
		}

		firstBodega := req.Distribuciones[0].IDBodega
		base, err := s.generator.GenerateTx(ctx, tx, &firstBodega)
		if err != nil {
			return err
		}

		result = &DistributedReceptionResult{NumeroLoteBase: base}
		for _, entry := range req.Distribuciones {
			bodega := bodegas[entry.IDBodega]
			numero := base + "-" + warehousePrefix(bodega.Nombre)

			nota := fmt.Sprintf("Distribución del lote base %s", base)
			if req.LoteBase.Observaciones != nil {
				nota = *req.LoteBase.Observaciones + " | " + nota
			}

			header := &ReceptionLotHeader{
				IDProveedor:      req.LoteBase.IDProveedor,
				FechaFabricacion: req.LoteBase.FechaFabricacion,
				FechaVencimiento: req.LoteBase.FechaVencimiento,
				Observaciones:    &nota,
			}
			_, productIDs, err := s.createLotTx(ctx, tx, numero, header, entry.Items, bodega, act)
			if err != nil {
				return err
			}

			result.LotesCreados = append(result.LotesCreados, numero)
			result.ProductosCreados = append(result.ProductosCreados, productIDs...)
			result.BodegasUtilizadas = append(result.BodegasUtilizadas, bodega.IDBodega)
		}
		result.TotalProductos = len(result.ProductosCreados)

		detalle := map[string]interface{}{
			"numero_lote_base":   base,
			"lotes_creados":      result.LotesCreados,
			"total_productos":    result.TotalProductos,
			"bodegas_utilizadas": result.BodegasUtilizadas,
		}
		audit := &repository.Auditoria{
			Entidad:   "lote",
			Accion:    "recepcion_distribuida",
			IDUsuario: act.ID,
		}
		return s.audits.CreateTx(ctx, tx, audit, detalle)
	})
	if err != nil {
		return nil, err
	}

	s.afterReceptionCommit(ctx)
	s.events.LoteDistribuido(ctx, messaging.LoteDistribuidoEvent{
		NumeroLoteBase: result.NumeroLoteBase,
		LotesCreados:   result.LotesCreados,
		IDSucursal:     idSucursal,
		TotalProductos: result.TotalProductos,
		Bodegas:        result.BodegasUtilizadas,
		IDUsuario:      act.ID,
	})

	s.logger.Info().
		Str("numero_lote_base", result.NumeroLoteBase).
		Int("bodegas", len(result.BodegasUtilizadas)).
		Int("productos", result.TotalProductos).
		Msg("lote distribuido")

	return result, nil
}

// lockWarehousesTx locks every referenced warehouse in ascending id order and
// returns them keyed by id.
func (s *ReceptionService) lockWarehousesTx(ctx context.Context, tx *sqlx.Tx, entries []DistributionEntry) (map[int64]*repository.Bodega, error) {
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.IDBodega)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bodegas := make(map[int64]*repository.Bodega, len(ids))
	for _, id := range ids {
		bodega, err := s.warehouses.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		bodegas[id] = bodega
	}
	return bodegas, nil
}
