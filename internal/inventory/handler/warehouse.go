package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/service"
	"github.com/farmatrack/farmatrack-backend/pkg/actor"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/httputil"
	"github.com/farmatrack/farmatrack-backend/pkg/logger"
)

// WarehouseHandler handles warehouse capacity readouts
type WarehouseHandler struct {
	service *service.ReceptionService
	logger  *logger.Logger
}

// NewWarehouseHandler creates a new warehouse handler
func NewWarehouseHandler(svc *service.ReceptionService, log *logger.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		service: svc,
		logger:  log,
	}
}

func warehouseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("id de bodega inválido")
	}
	return id, nil
}

// Availability reports a warehouse's capacity, occupancy and free room
func (h *WarehouseHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, err := warehouseID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	status, err := h.service.Availability(r.Context(), id, actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, status)
}

// Alternatives lists sibling warehouses with their availability
func (h *WarehouseHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	id, err := warehouseID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	alternatives, err := h.service.Alternatives(r.Context(), id, actor.FromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alternatives)
}
