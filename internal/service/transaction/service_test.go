package transaction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

// fakeStore records writer calls so tests can assert what the service handed down.
type fakeStore struct {
	accounts     map[uuid.UUID]budget.Account
	categories   map[uuid.UUID]budget.Category
	transactions map[uuid.UUID]budget.Transaction

	updated       *budget.Transaction
	prevAmount    decimal.Decimal
	prevAccountID uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:     map[uuid.UUID]budget.Account{},
		categories:   map[uuid.UUID]budget.Category{},
		transactions: map[uuid.UUID]budget.Transaction{},
	}
}

func (f *fakeStore) AccountByID(_ context.Context, userID, id uuid.UUID) (budget.Account, error) {
	a, ok := f.accounts[id]
	if !ok || a.UserID != userID {
		return budget.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) CategoryByID(_ context.Context, userID, id uuid.UUID) (budget.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.UserID != userID {
		return budget.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) TransactionByID(_ context.Context, userID, id uuid.UUID) (budget.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.UserID != userID {
		return budget.Transaction{}, errs.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t budget.Transaction) (budget.Transaction, error) {
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t budget.Transaction, prevAmount decimal.Decimal, prevAccountID uuid.UUID) (budget.Transaction, error) {
	f.updated = &t
	f.prevAmount = prevAmount
	f.prevAccountID = prevAccountID
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	delete(f.transactions, id)
	return nil
}

func setup(t *testing.T) (*fakeStore, Service, Input) {
	t.Helper()
	store := newFakeStore()
	userID := uuid.New()
	acct := budget.Account{ID: uuid.New(), UserID: userID, Name: "Wallet"}
	store.accounts[acct.ID] = acct
	exp := budget.Category{ID: uuid.New(), UserID: userID, Name: "Groceries", OperationType: budget.OperationExpense}
	store.categories[exp.ID] = exp
	in := Input{
		UserID:        userID,
		Date:          time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:        d(t, "12.50"),
		CategoryID:    exp.ID,
		AccountID:     acct.ID,
		OperationType: budget.OperationExpense,
	}
	return store, New(store, store), in
}

func TestCreate_SignsExpenseAmount(t *testing.T) {
	_, svc, in := setup(t)
	got, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Amount.Cmp(d(t, "-12.50")) != 0 {
		t.Fatalf("expense must be stored negative: %s", got.Amount)
	}
	if got.ID == uuid.Nil {
		t.Fatalf("id must be assigned")
	}
}

func TestCreate_SignsIncomeAmount(t *testing.T) {
	store, svc, in := setup(t)
	inc := budget.Category{ID: uuid.New(), UserID: in.UserID, Name: "Salary", OperationType: budget.OperationIncome}
	store.categories[inc.ID] = inc
	in.CategoryID = inc.ID
	in.OperationType = budget.OperationIncome

	got, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Amount.Cmp(d(t, "12.50")) != 0 {
		t.Fatalf("income must be stored positive: %s", got.Amount)
	}
}

func TestCreate_Validation(t *testing.T) {
	store, svc, valid := setup(t)

	cases := []struct {
		name   string
		mutate func(in *Input)
		want   error
	}{
		{"zero amount", func(in *Input) { in.Amount = decimal.Decimal{} }, ErrAmountNotPositive},
		{"negative amount", func(in *Input) { in.Amount = d(t, "-5") }, ErrAmountNotPositive},
		{"long note", func(in *Input) { in.Note = strings.Repeat("x", budget.NoteMaxLen+1) }, ErrNoteTooLong},
		{"bad operation type", func(in *Input) { in.OperationType = "transfer" }, ErrBadOperationType},
		{"unknown account", func(in *Input) { in.AccountID = uuid.New() }, ErrUnknownAccount},
		{"unknown category", func(in *Input) { in.CategoryID = uuid.New() }, ErrUnknownCategory},
		{"zero date", func(in *Input) { in.Date = time.Time{} }, errs.ErrInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			if _, err := svc.Create(context.Background(), in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// category owned by the user but declared with the wrong type
	in := valid
	in.OperationType = budget.OperationIncome
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("expected category mismatch, got %v", err)
	}

	// nothing was persisted by failed creates
	if len(store.transactions) != 0 {
		t.Fatalf("failed validation must not write: %d rows", len(store.transactions))
	}
}

func TestCreate_ForeignAccountIsUnknown(t *testing.T) {
	store, svc, in := setup(t)
	foreign := budget.Account{ID: uuid.New(), UserID: uuid.New(), Name: "Other"}
	store.accounts[foreign.ID] = foreign
	in.AccountID = foreign.ID
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("another user's account must look unknown, got %v", err)
	}
}

func TestUpdate_PassesCapturedPreviousState(t *testing.T) {
	store, svc, in := setup(t)
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	upd := in
	upd.Amount = d(t, "40.00")
	if _, err := svc.Update(context.Background(), created.ID, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if store.updated == nil {
		t.Fatalf("writer not called")
	}
	if store.prevAmount.Cmp(d(t, "-12.50")) != 0 {
		t.Fatalf("previous signed amount must be captured before mutation: %s", store.prevAmount)
	}
	if store.prevAccountID != in.AccountID {
		t.Fatalf("previous account must be captured")
	}
	if store.updated.Amount.Cmp(d(t, "-40.00")) != 0 {
		t.Fatalf("new amount must be re-signed: %s", store.updated.Amount)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	_, svc, in := setup(t)
	if _, err := svc.Update(context.Background(), uuid.New(), in); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDelete_ForeignUserNotFound(t *testing.T) {
	_, svc, in := setup(t)
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(context.Background(), uuid.New(), created.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("foreign delete must be not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), in.UserID, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}
