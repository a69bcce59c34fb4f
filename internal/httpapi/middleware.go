package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/transaction"
)

type ctxKey string

const ctxKeyTransaction ctxKey = "validatedTransaction"

// validateTransaction parses the POST/PUT transaction body into a service
// Input and stores it in the request context for the handler to use. Deep
// validation (ownership, category match) stays in the service.
func (s *Server) validateTransaction() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requireJSON(w, r) {
				return
			}
			var req transactionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				badRequest(w, "invalid JSON: "+err.Error())
				return
			}
			date, err := time.Parse(dateLayout, req.Date)
			if err != nil {
				badRequest(w, "invalid date, want YYYY-MM-DD")
				return
			}
			amount, err := decimal.Parse(req.Amount)
			if err != nil {
				badRequest(w, "invalid amount")
				return
			}
			in := transaction.Input{
				UserID:        userID(r),
				Date:          date,
				Amount:        amount,
				CategoryID:    req.CategoryID,
				AccountID:     req.AccountID,
				Note:          req.Note,
				OperationType: budget.OperationType(req.OperationType),
			}
			ctx := context.WithValue(r.Context(), ctxKeyTransaction, in)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
