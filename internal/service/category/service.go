// Package category implements category rules: per-user uniqueness over
// (name, operation type) and an operation type that cannot change while
// transactions still inherit it.
package category

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

// Repo defines read operations needed by the service.
type Repo interface {
	// ListCategories returns the user's categories, optionally filtered by
	// operation type, in name order.
	ListCategories(ctx context.Context, userID uuid.UUID, op *budget.OperationType) ([]budget.Category, error)
	CategoryByID(ctx context.Context, userID, id uuid.UUID) (budget.Category, error)
	CategoryHasTransactions(ctx context.Context, userID, categoryID uuid.UUID) (bool, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
	CreateCategory(ctx context.Context, c budget.Category) (budget.Category, error)
	UpdateCategory(ctx context.Context, c budget.Category) (budget.Category, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
}

// Service exposes category operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, name string, op budget.OperationType) (budget.Category, error)
	List(ctx context.Context, userID uuid.UUID, op *budget.OperationType) ([]budget.Category, error)
	Get(ctx context.Context, userID, id uuid.UUID) (budget.Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, name string, op budget.OperationType) (budget.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

var (
	// ErrNameExists indicates a (name, operation type) collision for the user.
	ErrNameExists = errors.New("category name already exists for user and operation type")
	// ErrBadOperationType mirrors the transaction-side sentinel for parity in callers.
	ErrBadOperationType = errors.New("operation type must be income or expense")
)

type service struct {
	repo   Repo
	writer Writer
}

// New constructs the category service.
func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) Create(ctx context.Context, userID uuid.UUID, name string, op budget.OperationType) (budget.Category, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil || name == "" {
		return budget.Category{}, errs.ErrInvalid
	}
	if !op.Valid() {
		return budget.Category{}, ErrBadOperationType
	}
	existing, err := s.repo.ListCategories(ctx, userID, &op)
	if err != nil {
		return budget.Category{}, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return budget.Category{}, ErrNameExists
		}
	}
	c := budget.Category{ID: uuid.New(), UserID: userID, Name: name, OperationType: op}
	return s.writer.CreateCategory(ctx, c)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, op *budget.OperationType) ([]budget.Category, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	if op != nil && !op.Valid() {
		return nil, ErrBadOperationType
	}
	return s.repo.ListCategories(ctx, userID, op)
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (budget.Category, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return budget.Category{}, errs.ErrInvalid
	}
	return s.repo.CategoryByID(ctx, userID, id)
}

// Update renames a category and, when no transactions reference it yet,
// allows switching its operation type. Flipping the type under existing
// transactions would silently invert their meaning, so that is refused.
func (s *service) Update(ctx context.Context, userID, id uuid.UUID, name string, op budget.OperationType) (budget.Category, error) {
	name = strings.TrimSpace(name)
	if userID == uuid.Nil || id == uuid.Nil || name == "" {
		return budget.Category{}, errs.ErrInvalid
	}
	if !op.Valid() {
		return budget.Category{}, ErrBadOperationType
	}
	c, err := s.repo.CategoryByID(ctx, userID, id)
	if err != nil {
		return budget.Category{}, err
	}
	if op != c.OperationType {
		used, err := s.repo.CategoryHasTransactions(ctx, userID, id)
		if err != nil {
			return budget.Category{}, err
		}
		if used {
			return budget.Category{}, errs.ErrInUse
		}
	}
	existing, err := s.repo.ListCategories(ctx, userID, &op)
	if err != nil {
		return budget.Category{}, err
	}
	for _, other := range existing {
		if other.ID != id && strings.EqualFold(other.Name, name) {
			return budget.Category{}, ErrNameExists
		}
	}
	c.Name = name
	c.OperationType = op
	return s.writer.UpdateCategory(ctx, c)
}

// Delete refuses to remove a category that transactions still reference.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil || id == uuid.Nil {
		return errs.ErrInvalid
	}
	if _, err := s.repo.CategoryByID(ctx, userID, id); err != nil {
		return err
	}
	used, err := s.repo.CategoryHasTransactions(ctx, userID, id)
	if err != nil {
		return err
	}
	if used {
		return errs.ErrInUse
	}
	return s.writer.DeleteCategory(ctx, userID, id)
}
