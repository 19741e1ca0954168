package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hisab/internal/core"
	"hisab/internal/ledger"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps engine errors onto HTTP statuses: validation failures
// are 422, identity errors 404/409, everything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err))
	case errors.Is(err, ledger.ErrDuplicateID):
		writeJSON(w, http.StatusConflict, errorBody(err))
	case core.IsValidationError(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err))
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody(err))
}

func errorBody(err error) map[string]string {
	return map[string]string{"detail": err.Error()}
}
