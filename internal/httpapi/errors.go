package httpapi

import (
	"errors"
	"net/http"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/account"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/category"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/transaction"
)

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter) {
	writeErr(w, http.StatusNotFound, "not_found", "not_found")
}

// respondError maps service and storage errors onto HTTP statuses and stable
// machine-readable codes.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	case errors.Is(err, errs.ErrForbidden):
		writeErr(w, http.StatusForbidden, err.Error(), "forbidden")
	case errors.Is(err, errs.ErrConflict):
		writeErr(w, http.StatusConflict, err.Error(), "conflict")
	case errors.Is(err, errs.ErrInUse):
		writeErr(w, http.StatusConflict, err.Error(), "in_use")
	case errors.Is(err, account.ErrNameExists), errors.Is(err, category.ErrNameExists):
		writeErr(w, http.StatusConflict, err.Error(), "name_exists")
	case errors.Is(err, transaction.ErrAmountNotPositive):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_amount")
	case errors.Is(err, transaction.ErrNoteTooLong):
		writeErr(w, http.StatusBadRequest, err.Error(), "note_too_long")
	case errors.Is(err, transaction.ErrCategoryMismatch):
		writeErr(w, http.StatusBadRequest, err.Error(), "category_mismatch")
	case errors.Is(err, transaction.ErrUnknownAccount):
		writeErr(w, http.StatusBadRequest, err.Error(), "unknown_account")
	case errors.Is(err, transaction.ErrUnknownCategory):
		writeErr(w, http.StatusBadRequest, err.Error(), "unknown_category")
	case errors.Is(err, transaction.ErrBadOperationType), errors.Is(err, category.ErrBadOperationType):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_operation_type")
	case errors.Is(err, account.ErrUnknownType):
		writeErr(w, http.StatusBadRequest, err.Error(), "unknown_type")
	case errors.Is(err, errs.ErrInvalid):
		writeErr(w, http.StatusBadRequest, err.Error(), "invalid_request")
	default:
		writeErr(w, http.StatusInternalServerError, "internal error", "internal")
	}
}
