package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/testutil"
)

func TestWarehouseGetByIDNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery(`SELECT * FROM bodega WHERE id_bodega = $1`).
		WithArgs(int64(99)).
		WillReturnRows(testutil.MockRows("id_bodega", "nombre", "tipo", "capacidad", "operativa", "id_sucursal"))

	repo := NewWarehouseRepository(mockDB.DB)
	_, err := repo.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}

func TestOccupancyEmptyWarehouseIsZero(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`SELECT COALESCE(SUM(p.cantidad_total), 0)`).
		WithArgs(int64(5)).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(0))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	repo := NewWarehouseRepository(mockDB.DB)
	total, err := repo.OccupancyTx(context.Background(), tx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	mockDB.ExpectationsWereMet(t)
}

func TestOccupancySumsActiveAndInTransit(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`SELECT COALESCE(SUM(p.cantidad_total), 0)`).
		WithArgs(int64(5)).
		WillReturnRows(testutil.MockRows("coalesce").AddRow(130))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	repo := NewWarehouseRepository(mockDB.DB)
	total, err := repo.OccupancyTx(context.Background(), tx, 5)
	require.NoError(t, err)
	assert.Equal(t, 130, total)
	mockDB.ExpectationsWereMet(t)
}

func TestListSiblingsOrdersByID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(`id_sucursal = $1 AND id_bodega != $2 AND operativa = true`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(testutil.MockRows("id_bodega", "nombre", "tipo", "capacidad", "operativa", "id_sucursal").
			AddRow(11, "Anexa", "General", 60, true, 1).
			AddRow(12, "Fría", "Refrigerada", 40, true, 1))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	repo := NewWarehouseRepository(mockDB.DB)
	siblings, err := repo.ListSiblingsTx(context.Background(), tx, 1, 10)
	require.NoError(t, err)
	require.Len(t, siblings, 2)
	assert.Equal(t, int64(11), siblings[0].IDBodega)
	assert.Equal(t, int64(12), siblings[1].IDBodega)
	mockDB.ExpectationsWereMet(t)
}
