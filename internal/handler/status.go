package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/folio/folio/internal/handler/dto"
	"github.com/folio/folio/internal/service"
)

// StatusHandler handles status check requests.
type StatusHandler struct {
	svc    *service.StatusService
	logger *slog.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(svc *service.StatusService, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST {prefix}/status.
func (h *StatusHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateStatusCheckRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := dto.Validate(req); details != nil {
		writeValidationError(w, details)
		return
	}

	sc, err := h.svc.Create(r.Context(), req.ClientName)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStatusCheckResponse(sc))
}

// List handles GET {prefix}/status.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	checks, err := h.svc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStatusCheckList(checks))
}

func (h *StatusHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeValidationError(w, []dto.FieldError{{Field: "client_name", Message: "field is required"}})
	case errors.Is(err, service.ErrPersistence):
		h.logger.Error("status check persistence failed", "error", err)
		writeError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "Failed to store status check")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
