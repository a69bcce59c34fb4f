// Package transaction implements the balance adjustment rules: every
// transaction write posts the matching signed delta to its account in the
// same storage transaction, so the stored balance always equals the sum of
// the account's transactions.
package transaction

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

// Repo defines read operations needed by the service.
type Repo interface {
	AccountByID(ctx context.Context, userID, accountID uuid.UUID) (budget.Account, error)
	CategoryByID(ctx context.Context, userID, categoryID uuid.UUID) (budget.Category, error)
	TransactionByID(ctx context.Context, userID, id uuid.UUID) (budget.Transaction, error)
}

// Writer defines write operations needed by the service. Implementations
// must apply the transaction row change and the account balance change as a
// single atomic unit.
type Writer interface {
	CreateTransaction(ctx context.Context, t budget.Transaction) (budget.Transaction, error)
	// UpdateTransaction reverses the previous amount on the previous account,
	// applies the new signed amount to the (possibly different) new account,
	// and persists the row. The previous values were captured by the caller
	// before mutation; implementations re-verify them against the stored row
	// inside the same transaction and refuse the write on mismatch.
	UpdateTransaction(ctx context.Context, t budget.Transaction, prevAmount decimal.Decimal, prevAccountID uuid.UUID) (budget.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
}

// Service exposes validated create/read/update/delete of transactions.
type Service interface {
	Create(ctx context.Context, in Input) (budget.Transaction, error)
	Get(ctx context.Context, userID, id uuid.UUID) (budget.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (budget.Transaction, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Input is the edit-time shape of a transaction. Amount is unsigned; the
// stored sign is derived from the operation type exactly once.
type Input struct {
	UserID        uuid.UUID
	Date          time.Time
	Amount        decimal.Decimal
	CategoryID    uuid.UUID
	AccountID     uuid.UUID
	Note          string
	OperationType budget.OperationType
}

// Validation errors surfaced to the caller for correction.
var (
	ErrUnknownAccount    = errors.New("account does not exist for user")
	ErrUnknownCategory   = errors.New("category does not exist for user")
	ErrCategoryMismatch  = errors.New("category operation type does not match transaction")
	ErrAmountNotPositive = errors.New("amount must be > 0")
	ErrNoteTooLong       = errors.New("note exceeds 1000 characters")
	ErrBadOperationType  = errors.New("operation type must be income or expense")
)

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the transaction service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

// validate checks the input against the rules shared by create and update:
// a positive unsigned amount, a bounded note, and referenced account and
// category rows that belong to the requesting user, with the category's
// operation type matching the declared one.
func (s *service) validate(ctx context.Context, in Input) error {
	if in.UserID == uuid.Nil || in.AccountID == uuid.Nil || in.CategoryID == uuid.Nil {
		return errs.ErrInvalid
	}
	if in.Date.IsZero() {
		return errs.ErrInvalid
	}
	if !in.OperationType.Valid() {
		return ErrBadOperationType
	}
	if !in.Amount.IsPos() {
		return ErrAmountNotPositive
	}
	if utf8.RuneCountInString(in.Note) > budget.NoteMaxLen {
		return ErrNoteTooLong
	}
	if _, err := s.repo.AccountByID(ctx, in.UserID, in.AccountID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrUnknownAccount
		}
		return err
	}
	cat, err := s.repo.CategoryByID(ctx, in.UserID, in.CategoryID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return ErrUnknownCategory
		}
		return err
	}
	if cat.OperationType != in.OperationType {
		return ErrCategoryMismatch
	}
	return nil
}

func (s *service) Create(ctx context.Context, in Input) (budget.Transaction, error) {
	if err := s.validate(ctx, in); err != nil {
		return budget.Transaction{}, err
	}
	t := budget.Transaction{
		ID:            uuid.New(),
		UserID:        in.UserID,
		Date:          in.Date,
		Amount:        budget.SignedAmount(in.Amount, in.OperationType),
		CategoryID:    in.CategoryID,
		AccountID:     in.AccountID,
		Note:          in.Note,
		OperationType: in.OperationType,
	}
	return s.writer.CreateTransaction(ctx, t)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (budget.Transaction, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return budget.Transaction{}, errs.ErrInvalid
	}
	return s.repo.TransactionByID(ctx, userID, id)
}

// Update captures the previous signed amount and account id from the stored
// row, then hands both to the writer so the old effect is reversed and the
// new one applied in one unit. All four combinations of {same account,
// different account} x {same type, different type} reduce to that single rule.
func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (budget.Transaction, error) {
	if id == uuid.Nil {
		return budget.Transaction{}, errs.ErrInvalid
	}
	prev, err := s.repo.TransactionByID(ctx, in.UserID, id)
	if err != nil {
		return budget.Transaction{}, err
	}
	if err := s.validate(ctx, in); err != nil {
		return budget.Transaction{}, err
	}
	t := budget.Transaction{
		ID:            id,
		UserID:        in.UserID,
		Date:          in.Date,
		Amount:        budget.SignedAmount(in.Amount, in.OperationType),
		CategoryID:    in.CategoryID,
		AccountID:     in.AccountID,
		Note:          in.Note,
		OperationType: in.OperationType,
	}
	return s.writer.UpdateTransaction(ctx, t, prev.Amount, prev.AccountID)
}

// Delete removes the transaction and restores its signed amount to the
// owning account. A missing or foreign id surfaces as not found, which never
// reveals whether another user's transaction exists.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return errs.ErrInvalid
	}
	t, err := s.repo.TransactionByID(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.writer.DeleteTransaction(ctx, userID, t.ID)
}
