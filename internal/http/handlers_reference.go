package http

import (
	"encoding/json"
	"net/http"

	"hisab/internal/core"
)

type refPayload struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

func decodeRef(r *http.Request) (refPayload, error) {
	var p refPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return refPayload{}, err
	}
	p.Name = sanitizeInput(p.Name)
	return p, nil
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.refs.ListPeople(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]refPayload, 0, len(people))
	for _, p := range people {
		out = append(out, refPayload{ID: p.ID, Name: p.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	p, err := decodeRef(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if p.ID == "" {
		p.ID = slugID("p", p.Name)
	}
	if err := s.refs.CreatePerson(r.Context(), core.Person{ID: p.ID, Name: p.Name}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	p, err := decodeRef(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	p.ID = r.PathValue("id")
	if err := s.refs.UpdatePerson(r.Context(), core.Person{ID: p.ID, Name: p.Name}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.refs.DeletePerson(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.refs.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]refPayload, 0, len(categories))
	for _, c := range categories {
		out = append(out, refPayload{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	c, err := decodeRef(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	if c.ID == "" {
		c.ID = slugID("cat", c.Name)
	}
	if err := s.refs.CreateCategory(r.Context(), core.Category{ID: c.ID, Name: c.Name}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	c, err := decodeRef(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}
	c.ID = r.PathValue("id")
	if err := s.refs.UpdateCategory(r.Context(), core.Category{ID: c.ID, Name: c.Name}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.refs.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
