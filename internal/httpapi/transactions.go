package httpapi

import (
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/transaction"
)

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := r.Context().Value(ctxKeyTransaction).(transaction.Input)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	t, err := s.txSvc.Create(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	t, err := s.txSvc.Get(r.Context(), userID(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(t))
}

// listTransactionsByDate returns the transactions of a single calendar date,
// used by the calendar view's day drill-down.
func (s *Server) listTransactionsByDate(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		badRequest(w, "date is required")
		return
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		badRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}
	list, err := s.reportSvc.ByDate(r.Context(), userID(r), date)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponses(list))
}

func (s *Server) putTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	in, ok := r.Context().Value(ctxKeyTransaction).(transaction.Input)
	if !ok {
		badRequest(w, "missing validated request")
		return
	}
	t, err := s.txSvc.Update(r.Context(), id, in)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	if err := s.txSvc.Delete(r.Context(), userID(r), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
