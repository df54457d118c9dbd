package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/testutil"
)

func TestWarehousePrefix(t *testing.T) {
	tests := []struct {
		nombre string
		want   string
	}{
		{"Central", "CEN"},
		{"anexa", "ANE"},
		{"Bo", "BO"},
		{"bodega azul", "BOD"},
		{"Ánexa", "ÁNE"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, warehousePrefix(tt.nombre), tt.nombre)
	}
}

func distItems(cantidades ...int) []ReceptionItem {
	items := make([]ReceptionItem, 0, len(cantidades))
	for i, c := range cantidades {
		items = append(items, ReceptionItem{
			NombreComercial:   fmt.Sprintf("Producto %d", i+1),
			FormaFarmaceutica: "Jarabe",
			Concentracion:     "120mg/5ml",
			Presentacion:      "Frasco",
			UnidadMedida:      "unidad",
			Cantidad:          c,
		})
	}
	return items
}

func distributedRequest(entries ...DistributionEntry) *DistributedReceptionRequest {
	return &DistributedReceptionRequest{
		LoteBase: DistributedLotHeader{
			IDProveedor:      1,
			FechaFabricacion: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			FechaVencimiento: time.Date(2028, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		Distribuciones: entries,
	}
}

func TestReceiveDistributedHappyPath(t *testing.T) {
	svc, mockDB := newTestService(t)

	req := distributedRequest(
		DistributionEntry{IDBodega: 11, Items: distItems(40)},
		DistributionEntry{IDBodega: 10, Items: distItems(15)},
	)

	expectSupplierExists(mockDB, true)
	mockDB.ExpectBegin()
	// Locks go in ascending id order regardless of request order
	mockDB.ExpectQuery(bodegaForUpdate).WithArgs(int64(10)).
		WillReturnRows(bodegaRow(10, "Central", 100, 1))
	mockDB.ExpectQuery(bodegaForUpdate).WithArgs(int64(11)).
		WillReturnRows(bodegaRow(11, "Anexa", 60, 1))
	// Re-validation follows request order
	mockDB.ExpectQuery(occupancyQuery).WithArgs(int64(11)).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(10))
	mockDB.ExpectQuery(occupancyQuery).WithArgs(int64(10)).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(80))
	mockDB.ExpectQuery(`SELECT EXISTS(SELECT 1 FROM lote`).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	// Sub-lot for bodega 11
	mockDB.ExpectQuery(insertLote).
		WillReturnRows(testutil.MockRows("id_lote", "fecha_registro").AddRow(50, time.Now()))
	mockDB.ExpectQuery(insertProducto).
		WillReturnRows(testutil.MockRows("id_producto").AddRow(200))
	mockDB.ExpectQuery(insertMovimiento).
		WillReturnRows(testutil.MockRows("id_movimiento", "fecha_movimiento").AddRow(2000, time.Now()))
	// Sub-lot for bodega 10
	mockDB.ExpectQuery(insertLote).
		WillReturnRows(testutil.MockRows("id_lote", "fecha_registro").AddRow(51, time.Now()))
	mockDB.ExpectQuery(insertProducto).
		WillReturnRows(testutil.MockRows("id_producto").AddRow(201))
	mockDB.ExpectQuery(insertMovimiento).
		WillReturnRows(testutil.MockRows("id_movimiento", "fecha_movimiento").AddRow(2010, time.Now()))
	mockDB.ExpectQuery(insertAuditoria).
		WillReturnRows(testutil.MockRows("id_auditoria", "fecha").AddRow(8, time.Now()))
	mockDB.ExpectCommit()

	result, err := svc.ReceiveDistributed(context.Background(), req, adminActor())
	require.NoError(t, err)

	assert.Contains(t, result.NumeroLoteBase, "LOT-B11-")
	require.Len(t, result.LotesCreados, 2)
	assert.Equal(t, result.NumeroLoteBase+"-ANE", result.LotesCreados[0])
	assert.Equal(t, result.NumeroLoteBase+"-CEN", result.LotesCreados[1])
	assert.Equal(t, []int64{200, 201}, result.ProductosCreados)
	assert.Equal(t, 2, result.TotalProductos)
	assert.Equal(t, []int64{11, 10}, result.BodegasUtilizadas)
	mockDB.ExpectationsWereMet(t)
}

func TestReceiveDistributedRevalidationConflict(t *testing.T) {
	svc, mockDB := newTestService(t)

	req := distributedRequest(
		DistributionEntry{IDBodega: 11, Items: distItems(60)},
	)

	expectSupplierExists(mockDB, true)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(bodegaForUpdate).WithArgs(int64(11)).
		WillReturnRows(bodegaRow(11, "Anexa", 60, 1))
	mockDB.ExpectQuery(occupancyQuery).WithArgs(int64(11)).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(20))
	mockDB.ExpectRollback()

	_, err := svc.ReceiveDistributed(context.Background(), req, adminActor())
	require.Error(t, err)

	var conflict *RevalidationConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Anexa", conflict.Bodega)
	assert.Equal(t, int64(11), conflict.IDBodega)
	assert.Equal(t, 40, conflict.Disponible)
	assert.Equal(t, 60, conflict.Requerido)
	mockDB.ExpectationsWereMet(t)
}

func TestReceiveDistributedRejectsCrossBranch(t *testing.T) {
	svc, mockDB := newTestService(t)

	req := distributedRequest(
		DistributionEntry{IDBodega: 10, Items: distItems(5)},
		DistributionEntry{IDBodega: 11, Items: distItems(5)},
	)

	expectSupplierExists(mockDB, true)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(bodegaForUpdate).WithArgs(int64(10)).
		WillReturnRows(bodegaRow(10, "Central", 100, 1))
	mockDB.ExpectQuery(bodegaForUpdate).WithArgs(int64(11)).
		WillReturnRows(bodegaRow(11, "Sur", 60, 2))
	mockDB.ExpectRollback()

	_, err := svc.ReceiveDistributed(context.Background(), req, adminActor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	mockDB.ExpectationsWereMet(t)
}

func TestReceiveDistributedRejectsDuplicateWarehouse(t *testing.T) {
	svc, mockDB := newTestService(t)

	req := distributedRequest(
		DistributionEntry{IDBodega: 10, Items: distItems(5)},
		DistributionEntry{IDBodega: 10, Items: distItems(5)},
	)

	_, err := svc.ReceiveDistributed(context.Background(), req, adminActor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	mockDB.ExpectationsWereMet(t)
}

func TestReceiveDistributedRejectsEmptyEntries(t *testing.T) {
	svc, mockDB := newTestService(t)

	_, err := svc.ReceiveDistributed(context.Background(), distributedRequest(), adminActor())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
	mockDB.ExpectationsWereMet(t)
}
