package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/service"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/logger"
)

func testHandler() *ReceptionHandler {
	return NewReceptionHandler(nil, logger.New("test", "test"))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestConflictMappingCapacity(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeConflictOrError(rec, &service.CapacityConflictError{
		BodegaPrincipal: service.SugerenciaBodega{
			IDBodega: 10, Nombre: "Central", Disponible: 5, CantidadSugerida: 5,
		},
		BodegasSecundarias: []service.SugerenciaBodega{
			{IDBodega: 11, Nombre: "Anexa", Disponible: 50, CantidadSugerida: 10},
		},
		Mensaje: "capacidad insuficiente",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "CAPACIDAD_INSUFICIENTE", errBody["code"])

	payload := errBody["payload"].(map[string]interface{})
	principal := payload["bodega_principal"].(map[string]interface{})
	assert.Equal(t, float64(5), principal["cantidad_sugerida"])
	secundarias := payload["bodegas_secundarias"].([]interface{})
	require.Len(t, secundarias, 1)
}

func TestConflictMappingBranchDeficit(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeConflictOrError(rec, &service.BranchDeficitError{
		CapacidadDisponibleSucursal: 55,
		CapacidadRequerida:          80,
		Deficit:                     25,
		Mensaje:                     "sin capacidad en la sucursal",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "CAPACIDAD_SUCURSAL_INSUFICIENTE", errBody["code"])

	payload := errBody["payload"].(map[string]interface{})
	assert.Equal(t, float64(25), payload["deficit"])
	assert.Equal(t, float64(55), payload["capacidad_disponible_sucursal"])
}

func TestConflictMappingRevalidation(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeConflictOrError(rec, &service.RevalidationConflictError{
		IDBodega:   11,
		Bodega:     "Anexa",
		Disponible: 40,
		Requerido:  60,
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	body := decodeBody(t, rec)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "CAPACIDAD_MODIFICADA", errBody["code"])

	payload := errBody["payload"].(map[string]interface{})
	assert.Equal(t, "Anexa", payload["bodega"])
	assert.Equal(t, float64(40), payload["disponible"])
	assert.Equal(t, float64(60), payload["requerido"])
}

func TestConflictMappingFallsThroughToAppError(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()

	h.writeConflictOrError(rec, errors.NotFound("bodega"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceiveRejectsInvalidJSON(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventario/lotes/recepcion", strings.NewReader("{"))

	h.Receive(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiveRejectsMissingItems(t *testing.T) {
	h := testHandler()
	rec := httptest.NewRecorder()
	payload := `{"lote":{"id_proveedor":1,"id_bodega":10,"fecha_fabricacion":"2026-01-10T00:00:00Z","fecha_vencimiento":"2028-01-10T00:00:00Z"},"items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventario/lotes/recepcion", strings.NewReader(payload))

	h.Receive(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
