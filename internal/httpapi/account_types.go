package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func decodeAccountTypeRequest(w http.ResponseWriter, r *http.Request) (accountTypeRequest, bool) {
	if !requireJSON(w, r) {
		return accountTypeRequest{}, false
	}
	var req accountTypeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return accountTypeRequest{}, false
	}
	return req, true
}

func (s *Server) postAccountType(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeAccountTypeRequest(w, r)
	if !ok {
		return
	}
	at, err := s.accountSvc.CreateAccountType(r.Context(), userID(r), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountTypeResponse(at))
}

func (s *Server) listAccountTypes(w http.ResponseWriter, r *http.Request) {
	list, err := s.accountSvc.ListAccountTypes(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]accountTypeResponse, 0, len(list))
	for _, at := range list {
		out = append(out, toAccountTypeResponse(at))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) putAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	req, ok := decodeAccountTypeRequest(w, r)
	if !ok {
		return
	}
	at, err := s.accountSvc.RenameAccountType(r.Context(), userID(r), id, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountTypeResponse(at))
}

func (s *Server) deleteAccountType(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := s.accountSvc.DeleteAccountType(r.Context(), userID(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderAccountTypes persists a drag-and-drop ordering: the array position
// of each id becomes its display order.
func (s *Server) reorderAccountTypes(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}
	var req orderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := s.accountSvc.ReorderAccountTypes(r.Context(), userID(r), req.IDs); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
