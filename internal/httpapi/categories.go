package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
)

func decodeCategoryRequest(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	if !requireJSON(w, r) {
		return categoryRequest{}, false
	}
	var req categoryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return categoryRequest{}, false
	}
	return req, true
}

func (s *Server) postCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCategoryRequest(w, r)
	if !ok {
		return
	}
	c, err := s.categorySvc.Create(r.Context(), userID(r), req.Name, budget.OperationType(req.OperationType))
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	var op *budget.OperationType
	if raw := r.URL.Query().Get("operation_type"); raw != "" {
		v := budget.OperationType(raw)
		op = &v
	}
	list, err := s.categorySvc.List(r.Context(), userID(r), op)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]categoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryResponse(c))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	c, err := s.categorySvc.Get(r.Context(), userID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) putCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	req, ok := decodeCategoryRequest(w, r)
	if !ok {
		return
	}
	c, err := s.categorySvc.Update(r.Context(), userID(r), id, req.Name, budget.OperationType(req.OperationType))
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := s.categorySvc.Delete(r.Context(), userID(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
