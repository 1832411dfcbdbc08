package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/folio/folio/internal/handler/dto"
	"github.com/folio/folio/internal/service"
)

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	svc    *service.ContactService
	logger *slog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST {prefix}/contact-messages.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateContactMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := dto.Validate(req); details != nil {
		writeValidationError(w, details)
		return
	}

	msg, err := h.svc.Submit(r.Context(), req.ToInput())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("contact_message_created",
		"message_id", msg.ID,
		"has_subject", msg.Subject != "",
	)

	writeJSON(w, http.StatusCreated, dto.ToContactMessageResponse(msg))
}

func (h *ContactHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Request validation failed")
	case errors.Is(err, service.ErrPersistence):
		h.logger.Error("contact message persistence failed", "error", err)
		writeError(w, http.StatusInternalServerError, "PERSISTENCE_FAILED", "Failed to save contact message")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
