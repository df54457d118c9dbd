// Package handler exposes the inventory engine over HTTP.
package handler

import (
	"net/http"

	"github.com/farmatrack/farmatrack-backend/internal/inventory/service"
	"github.com/farmatrack/farmatrack-backend/pkg/actor"
	"github.com/farmatrack/farmatrack-backend/pkg/errors"
	"github.com/farmatrack/farmatrack-backend/pkg/httputil"
	"github.com/farmatrack/farmatrack-backend/pkg/logger"
)

// ReceptionHandler handles lot reception endpoints
type ReceptionHandler struct {
	service *service.ReceptionService
	logger  *logger.Logger
}

// NewReceptionHandler creates a new reception handler
func NewReceptionHandler(svc *service.ReceptionService, log *logger.Logger) *ReceptionHandler {
	return &ReceptionHandler{
		service: svc,
		logger:  log,
	}
}

// Receive records an incoming lot into a single warehouse
func (h *ReceptionHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req service.ReceptionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Receive(r.Context(), &req, actor.FromContext(r.Context()))
	if err != nil {
		h.writeConflictOrError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// ReceiveDistributed records a lot split across several warehouses
func (h *ReceptionHandler) ReceiveDistributed(w http.ResponseWriter, r *http.Request) {
	var req service.DistributedReceptionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.ReceiveDistributed(r.Context(), &req, actor.FromContext(r.Context()))
	if err != nil {
		h.writeConflictOrError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// writeConflictOrError maps the typed capacity conflicts to 409 responses
// with their machine-readable payloads; everything else goes through the
// standard error envelope.
func (h *ReceptionHandler) writeConflictOrError(w http.ResponseWriter, err error) {
	var capacityErr *service.CapacityConflictError
	if errors.As(err, &capacityErr) {
		httputil.ErrorWithPayload(w, http.StatusConflict, "CAPACIDAD_INSUFICIENTE", capacityErr.Mensaje, capacityErr)
		return
	}

	var deficitErr *service.BranchDeficitError
	if errors.As(err, &deficitErr) {
		httputil.ErrorWithPayload(w, http.StatusConflict, "CAPACIDAD_SUCURSAL_INSUFICIENTE", deficitErr.Mensaje, deficitErr)
		return
	}

	var revalErr *service.RevalidationConflictError
	if errors.As(err, &revalErr) {
		httputil.ErrorWithPayload(w, http.StatusConflict, "CAPACIDAD_MODIFICADA", revalErr.Error(), revalErr)
		return
	}

	httputil.Error(w, err)
}
