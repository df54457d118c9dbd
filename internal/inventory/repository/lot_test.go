package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmatrack/farmatrack-backend/pkg/testutil"
)

func TestNumberExistsScopedToWarehouse(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	idBodega := int64(5)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`SELECT EXISTS(SELECT 1 FROM lote WHERE numero_lote = $1 AND id_bodega = $2)`).
		WithArgs("LOT-B5-20260101-000000", idBodega).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	repo := NewLotRepository(mockDB.DB)
	exists, err := repo.NumberExistsTx(context.Background(), tx, "LOT-B5-20260101-000000", &idBodega)
	require.NoError(t, err)
	assert.True(t, exists)
	mockDB.ExpectationsWereMet(t)
}

func TestNumberExistsNullScopeOnlyMatchesNullRows(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`SELECT EXISTS(SELECT 1 FROM lote WHERE numero_lote = $1 AND id_bodega IS NULL)`).
		WithArgs("LOT-N-20260101-000000").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	repo := NewLotRepository(mockDB.DB)
	exists, err := repo.NumberExistsTx(context.Background(), tx, "LOT-N-20260101-000000", nil)
	require.NoError(t, err)
	assert.False(t, exists)
	mockDB.ExpectationsWereMet(t)
}

func TestLotCreateDefaultsToActivo(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	idBodega := int64(5)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`INSERT INTO lote`).
		WithArgs("LOT-B5-20260101-000000",
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
			EstadoActivo, nil, int64(1), &idBodega).
		WillReturnRows(testutil.MockRows("id_lote", "fecha_registro").AddRow(42, time.Now()))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	repo := NewLotRepository(mockDB.DB)
	lote := &Lote{
		NumeroLote:       "LOT-B5-20260101-000000",
		FechaFabricacion: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FechaVencimiento: time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC),
		IDProveedor:      1,
		IDBodega:         &idBodega,
	}
	err = repo.CreateTx(context.Background(), tx, lote)
	require.NoError(t, err)
	assert.Equal(t, EstadoActivo, lote.Estado)
	assert.Equal(t, int64(42), lote.IDLote)
	mockDB.ExpectationsWereMet(t)
}

func TestLotListBuildsFilters(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	idBodega := int64(5)
	mockDB.ExpectQuery(`SELECT COUNT(*) FROM lote`).
		WithArgs(EstadoActivo, idBodega).
		WillReturnRows(testutil.MockRows("count").AddRow(1))
	mockDB.ExpectQuery(`ORDER BY fecha_registro DESC`).
		WithArgs(EstadoActivo, idBodega, 50, 0).
		WillReturnRows(testutil.MockRows(
			"id_lote", "numero_lote", "fecha_fabricacion", "fecha_vencimiento",
			"estado", "observaciones", "id_proveedor", "id_bodega", "fecha_registro",
		).AddRow(1, "LOT-B5-20260101-000000", time.Now(), time.Now(), EstadoActivo, nil, 1, idBodega, time.Now()))

	repo := NewLotRepository(mockDB.DB)
	lotes, total, err := repo.List(context.Background(), LotFilter{Estado: EstadoActivo, IDBodega: &idBodega})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, lotes, 1)
	assert.Equal(t, "LOT-B5-20260101-000000", lotes[0].NumeroLote)
	mockDB.ExpectationsWereMet(t)
}
