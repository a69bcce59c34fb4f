package httpapi

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/account"
)

func decodeAccountRequest(w http.ResponseWriter, r *http.Request) (account.AccountInput, bool) {
	if !requireJSON(w, r) {
		return account.AccountInput{}, false
	}
	var req accountRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badRequest(w, "invalid JSON: "+err.Error())
		return account.AccountInput{}, false
	}
	// absent balance means "keep the stored one", not zero
	var balance *decimal.Decimal
	if req.Balance != "" {
		v, err := decimal.Parse(req.Balance)
		if err != nil {
			badRequest(w, "invalid balance")
			return account.AccountInput{}, false
		}
		balance = &v
	}
	return account.AccountInput{
		UserID:  userID(r),
		TypeID:  req.TypeID,
		Name:    req.Name,
		Balance: balance,
	}, true
}

func (s *Server) postAccount(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeAccountRequest(w, r)
	if !ok {
		return
	}
	a, err := s.accountSvc.CreateAccount(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.accountSvc.ListAccounts(r.Context(), userID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	toJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	a, err := s.accountSvc.GetAccount(r.Context(), userID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) putAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	in, ok := decodeAccountRequest(w, r)
	if !ok {
		return
	}
	a, err := s.accountSvc.UpdateAccount(r.Context(), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toAccountResponse(a))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := s.accountSvc.DeleteAccount(r.Context(), userID(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
