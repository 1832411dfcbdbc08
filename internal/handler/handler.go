// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/folio/folio/internal/handler/dto"
)

var errTrailingData = errors.New("unexpected data after JSON body")

// Handler serves the root endpoints and the JSON fallbacks.
type Handler struct {
	apiPrefix string
}

// New creates a new Handler instance. apiPrefix is the mount point of the
// API router, e.g. "/api".
func New(apiPrefix string) *Handler {
	return &Handler{apiPrefix: apiPrefix}
}

// Root is the liveness welcome message.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Welcome to the Folio backend! Use " + h.apiPrefix + " for API endpoints.",
	})
}

// APIRoot greets clients of the API router.
// GET {prefix}/
func (h *Handler) APIRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Message: "Hello from the API router! Try " + h.apiPrefix + "/status or " + h.apiPrefix + "/contact-messages.",
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}

func writeValidationError(w http.ResponseWriter, details []dto.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
		Error:   "Request validation failed",
		Code:    "VALIDATION_FAILED",
		Details: details,
	})
}

// decodeBody decodes a JSON request body into dst and writes the error
// response itself when decoding fails. It reports whether decoding
// succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if err == nil {
		err = expectEOF(dec)
	}
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytesErr):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.As(err, &typeErr):
		writeValidationError(w, []dto.FieldError{{
			Field:   typeErr.Field,
			Message: "must be a " + typeErr.Type.String(),
		}})
	default:
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	}
	return false
}

// expectEOF rejects anything but whitespace after the first JSON value.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}
