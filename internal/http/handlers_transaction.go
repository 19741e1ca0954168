package http

import (
	"net/http"

	"hisab/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := decodeTransaction(r)
	if err != nil {
		if core.IsValidationError(err) {
			writeError(w, r, err)
		} else {
			writeBadRequest(w, err)
		}
		return
	}

	created, err := s.svc.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionToPayload(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToPayload(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		if core.IsValidationError(err) {
			writeError(w, r, err)
		} else {
			writeBadRequest(w, err)
		}
		return
	}

	txns, err := s.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionPayload, 0, len(txns))
	for _, t := range txns {
		out = append(out, transactionToPayload(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := decodeTransaction(r)
	if err != nil {
		if core.IsValidationError(err) {
			writeError(w, r, err)
		} else {
			writeBadRequest(w, err)
		}
		return
	}

	updated, err := s.svc.Update(r.Context(), r.PathValue("id"), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionToPayload(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
