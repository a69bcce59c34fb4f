// Package account implements the account and account-type rules: per-user
// name uniqueness, user-controlled display order for types, and deletes that
// are refused while other rows still reference the entity.
package account

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

// Repo defines read operations needed by the service.
type Repo interface {
	ListAccountTypes(ctx context.Context, userID uuid.UUID) ([]budget.AccountType, error)
	AccountTypeByID(ctx context.Context, userID, id uuid.UUID) (budget.AccountType, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]budget.Account, error)
	AccountByID(ctx context.Context, userID, accountID uuid.UUID) (budget.Account, error)
	AccountsByTypeID(ctx context.Context, userID, typeID uuid.UUID) ([]budget.Account, error)
	AccountHasTransactions(ctx context.Context, userID, accountID uuid.UUID) (bool, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateAccountType(ctx context.Context, at budget.AccountType) (budget.AccountType, error)
	UpdateAccountType(ctx context.Context, at budget.AccountType) (budget.AccountType, error)
	DeleteAccountType(ctx context.Context, userID, id uuid.UUID) error
	// ReorderAccountTypes assigns display order by position in ordered.
	ReorderAccountTypes(ctx context.Context, userID uuid.UUID, ordered []uuid.UUID) error
	CreateAccount(ctx context.Context, a budget.Account) (budget.Account, error)
	// UpdateAccount persists name and type and posts delta to the stored
	// running balance, all in one atomic write. A zero delta leaves the
	// balance untouched.
	UpdateAccount(ctx context.Context, a budget.Account, delta decimal.Decimal) (budget.Account, error)
	DeleteAccount(ctx context.Context, userID, id uuid.UUID) error
}

// Service exposes account and account-type operations.
type Service interface {
	CreateAccountType(ctx context.Context, userID uuid.UUID, name string) (budget.AccountType, error)
	ListAccountTypes(ctx context.Context, userID uuid.UUID) ([]budget.AccountType, error)
	RenameAccountType(ctx context.Context, userID, id uuid.UUID, name string) (budget.AccountType, error)
	DeleteAccountType(ctx context.Context, userID, id uuid.UUID) error
	ReorderAccountTypes(ctx context.Context, userID uuid.UUID, ordered []uuid.UUID) error

	CreateAccount(ctx context.Context, in AccountInput) (budget.Account, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]budget.Account, error)
	GetAccount(ctx context.Context, userID, id uuid.UUID) (budget.Account, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, in AccountInput) (budget.Account, error)
	DeleteAccount(ctx context.Context, userID, id uuid.UUID) error
}

// AccountInput carries the editable fields of an account. Balance is the
// stated balance: on create it seeds the running balance, on update any
// difference from the stored balance is posted as a correction delta. A nil
// Balance means the caller did not state one and the stored balance is kept.
type AccountInput struct {
	UserID  uuid.UUID
	TypeID  uuid.UUID
	Name    string
	Balance *decimal.Decimal
}

var (
	// ErrNameExists indicates a per-user name collision.
	ErrNameExists = errors.New("name already exists for user")
	// ErrUnknownType indicates the referenced account type does not exist for the user.
	ErrUnknownType = errors.New("account type does not exist for user")
)

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the account service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) CreateAccountType(ctx context.Context, userID uuid.UUID, name string) (budget.AccountType, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil || name == "" {
		return budget.AccountType{}, errs.ErrInvalid
	}
	existing, err := s.repo.ListAccountTypes(ctx, userID)
	if err != nil {
		return budget.AccountType{}, err
	}
	maxOrder := 0
	for _, at := range existing {
		if strings.EqualFold(at.Name, name) {
			return budget.AccountType{}, ErrNameExists
		}
		if at.DisplayOrder > maxOrder {
			maxOrder = at.DisplayOrder
		}
	}
	at := budget.AccountType{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		DisplayOrder: maxOrder + 1,
	}
	return s.writer.CreateAccountType(ctx, at)
}

func (s *service) ListAccountTypes(ctx context.Context, userID uuid.UUID) ([]budget.AccountType, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListAccountTypes(ctx, userID)
}

func (s *service) RenameAccountType(ctx context.Context, userID, id uuid.UUID, name string) (budget.AccountType, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil || id == uuid.Nil || name == "" {
		return budget.AccountType{}, errs.ErrInvalid
	}
	at, err := s.repo.AccountTypeByID(ctx, userID, id)
	if err != nil {
		return budget.AccountType{}, err
	}
	existing, err := s.repo.ListAccountTypes(ctx, userID)
	if err != nil {
		return budget.AccountType{}, err
	}
	for _, other := range existing {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return budget.AccountType{}, ErrNameExists
		}
	}
	at.Name = name
	return s.writer.UpdateAccountType(ctx, at)
}

// DeleteAccountType refuses to delete a type that accounts still reference.
func (s *service) DeleteAccountType(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.AccountTypeByID(ctx, userID, id); err != nil {
		return err
	}
	accs, err := s.repo.AccountsByTypeID(ctx, userID, id)
	if err != nil {
		return err
	}
	if len(accs) > 0 {
		return errs.ErrInUse
	}
	return s.writer.DeleteAccountType(ctx, userID, id)
}

// ReorderAccountTypes applies a user-supplied ordering. Every id must belong
// to the user; ids of other users are rejected outright.
func (s *service) ReorderAccountTypes(ctx context.Context, userID uuid.UUID, ordered []uuid.UUID) error {
	if userID == uuid.Nil || len(ordered) == 0 {
		return errs.ErrInvalid
	}
	existing, err := s.repo.ListAccountTypes(ctx, userID)
	if err != nil {
		return err
	}
	owned := make(map[uuid.UUID]struct{}, len(existing))
	for _, at := range existing {
		owned[at.ID] = struct{}{}
	}
	for _, id := range ordered {
		if _, ok := owned[id]; !ok {
			return errs.ErrForbidden
		}
	}
	return s.writer.ReorderAccountTypes(ctx, userID, ordered)
}

func (s *service) CreateAccount(ctx context.Context, in AccountInput) (budget.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.UserID == uuid.Nil || in.TypeID == uuid.Nil || in.Name == "" {
		return budget.Account{}, errs.ErrInvalid
	}
	if _, err := s.repo.AccountTypeByID(ctx, in.UserID, in.TypeID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return budget.Account{}, ErrUnknownType
		}
		return budget.Account{}, err
	}
	existing, err := s.repo.ListAccounts(ctx, in.UserID)
	if err != nil {
		return budget.Account{}, err
	}
	for _, a := range existing {
		if strings.EqualFold(a.Name, in.Name) {
			return budget.Account{}, ErrNameExists
		}
	}
	a := budget.Account{
		ID:     uuid.New(),
		UserID: in.UserID,
		TypeID: in.TypeID,
		Name:   in.Name,
	}
	if in.Balance != nil {
		a.Balance = *in.Balance
	}
	return s.writer.CreateAccount(ctx, a)
}

func (s *service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]budget.Account, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.ListAccounts(ctx, userID)
}

func (s *service) GetAccount(ctx context.Context, userID, id uuid.UUID) (budget.Account, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return budget.Account{}, errs.ErrInvalid
	}
	return s.repo.AccountByID(ctx, userID, id)
}

// UpdateAccount edits name and type. A changed stated balance is posted as a
// correction delta rather than overwriting the stored aggregate, keeping the
// incremental-maintenance rule intact; an absent stated balance keeps the
// stored one. Row edit and delta land in one writer call so neither can
// apply without the other.
func (s *service) UpdateAccount(ctx context.Context, id uuid.UUID, in AccountInput) (budget.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.UserID == uuid.Nil || id == uuid.Nil || in.Name == "" {
		return budget.Account{}, errs.ErrInvalid
	}
	current, err := s.repo.AccountByID(ctx, in.UserID, id)
	if err != nil {
		return budget.Account{}, err
	}
	if in.TypeID != current.TypeID {
		if _, err := s.repo.AccountTypeByID(ctx, in.UserID, in.TypeID); err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				return budget.Account{}, ErrUnknownType
			}
			return budget.Account{}, err
		}
	}
	existing, err := s.repo.ListAccounts(ctx, in.UserID)
	if err != nil {
		return budget.Account{}, err
	}
	for _, other := range existing {
		if other.ID != id && strings.EqualFold(other.Name, in.Name) {
			return budget.Account{}, ErrNameExists
		}
	}
	var delta decimal.Decimal
	if in.Balance != nil && in.Balance.Cmp(current.Balance) != 0 {
		delta, err = in.Balance.Sub(current.Balance)
		if err != nil {
			return budget.Account{}, err
		}
	}
	current.Name = in.Name
	current.TypeID = in.TypeID
	return s.writer.UpdateAccount(ctx, current, delta)
}

// DeleteAccount refuses to delete an account that transactions still
// reference: removing it would orphan the rows the balance was built from.
func (s *service) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.AccountByID(ctx, userID, id); err != nil {
		return err
	}
	used, err := s.repo.AccountHasTransactions(ctx, userID, id)
	if err != nil {
		return err
	}
	if used {
		return errs.ErrInUse
	}
	return s.writer.DeleteAccount(ctx, userID, id)
}
