package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/repository"
	"github.com/farmatrack/farmatrack-backend/pkg/testutil"
)

const (
	existsScopedQuery   = `SELECT EXISTS(SELECT 1 FROM lote WHERE numero_lote = $1 AND id_bodega = $2)`
	existsUnscopedQuery = `SELECT EXISTS(SELECT 1 FROM lote WHERE numero_lote = $1 AND id_bodega IS NULL)`
)

func fixedGenerator(t *testing.T) (*LotNumberGenerator, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)
	t.Cleanup(func() { mockDB.Close() })

	gen := NewLotNumberGenerator(repository.NewLotRepository(mockDB.DB))
	gen.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return gen, mockDB
}

func existsRow(taken bool) *sqlmock.Rows {
	return testutil.MockRows("exists").AddRow(taken)
}

func TestGenerateFirstTry(t *testing.T) {
	gen, mockDB := fixedGenerator(t)

	idBodega := int64(5)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(existsScopedQuery).
		WithArgs("LOT-B5-20260315-103000", idBodega).
		WillReturnRows(existsRow(false))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	numero, err := gen.GenerateTx(context.Background(), tx, &idBodega)
	require.NoError(t, err)
	assert.Equal(t, "LOT-B5-20260315-103000", numero)
	mockDB.ExpectationsWereMet(t)
}

func TestGenerateSuffixRetry(t *testing.T) {
	gen, mockDB := fixedGenerator(t)

	idBodega := int64(5)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(existsScopedQuery).
		WithArgs("LOT-B5-20260315-103000", idBodega).
		WillReturnRows(existsRow(true))
	mockDB.ExpectQuery(existsScopedQuery).
		WithArgs("LOT-B5-20260315-103000-001", idBodega).
		WillReturnRows(existsRow(true))
	mockDB.ExpectQuery(existsScopedQuery).
		WithArgs("LOT-B5-20260315-103000-002", idBodega).
		WillReturnRows(existsRow(false))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	numero, err := gen.GenerateTx(context.Background(), tx, &idBodega)
	require.NoError(t, err)
	assert.Equal(t, "LOT-B5-20260315-103000-002", numero)
	mockDB.ExpectationsWereMet(t)
}

func TestGenerateUnscopedLot(t *testing.T) {
	gen, mockDB := fixedGenerator(t)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery(existsUnscopedQuery).
		WithArgs("LOT-N-20260315-103000").
		WillReturnRows(existsRow(false))

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	numero, err := gen.GenerateTx(context.Background(), tx, nil)
	require.NoError(t, err)
	assert.Equal(t, "LOT-N-20260315-103000", numero)
	mockDB.ExpectationsWereMet(t)
}

func TestGenerateExhaustionFallsBackToMicroseconds(t *testing.T) {
	gen, mockDB := fixedGenerator(t)

	idBodega := int64(5)
	mockDB.ExpectBegin()
	mockDB.ExpectQuery(existsScopedQuery).
		WithArgs("LOT-B5-20260315-103000", idBodega).
		WillReturnRows(existsRow(true))
	for i := 1; i <= 999; i++ {
		mockDB.ExpectQuery(existsScopedQuery).
			WithArgs(fmt.Sprintf("LOT-B5-20260315-103000-%03d", i), idBodega).
			WillReturnRows(existsRow(true))
	}

	tx, err := mockDB.DB.Beginx()
	require.NoError(t, err)

	numero, err := gen.GenerateTx(context.Background(), tx, &idBodega)
	require.NoError(t, err)

	micro := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC).UnixMicro()
	assert.Equal(t, fmt.Sprintf("LOT-B5-20260315-103000-%d", micro), numero)
	mockDB.ExpectationsWereMet(t)
}
