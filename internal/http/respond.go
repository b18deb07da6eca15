package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"billkeep/internal/core"
)

// maxBodyBytes caps request bodies; anything larger is 413.
const maxBodyBytes = 1_000_000

// errorBody is the uniform non-2xx response shape.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorBody{Error: message, Details: details})
}

// writeDomainError maps store/domain sentinels onto the HTTP taxonomy.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "bill not found", "")
	case errors.Is(err, core.ErrDuplicateID):
		writeError(w, http.StatusConflict, "duplicate bill id", "")
	case errors.Is(err, core.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "missing name", "")
	case errors.Is(err, core.ErrInvalidDueDay):
		writeError(w, http.StatusBadRequest, "invalid dueDay", "dueDay must be an integer between 1 and 31")
	case errors.Is(err, core.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid amount", "amount must be a non-negative number")
	case errors.Is(err, core.ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, "invalid month", "month must be formatted YYYY-MM")
	case errors.Is(err, core.ErrEmptyToken):
		writeError(w, http.StatusBadRequest, "missing token", "")
	default:
		slog.Error("Internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

// decodeBody reads a JSON request body into v, enforcing the size cap and
// rejecting unknown fields. An empty body decodes as the zero request. It
// writes the error response itself and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload too large", "")
			return false
		}
		writeError(w, http.StatusBadRequest, "unreadable request body", "")
		return false
	}
	if len(raw) == 0 {
		return true
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", err.Error())
		return false
	}
	return true
}
