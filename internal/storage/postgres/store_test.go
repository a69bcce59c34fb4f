package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping Postgres store tests")
	}
	return dsn
}

func mustOpen(t *testing.T, dsn string) *Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func truncateAll(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = s.pool.Exec(ctx, `truncate table transactions, categories, accounts, account_types, users cascade`)
}

func mustDec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.Parse(v)
	if err != nil {
		t.Fatalf("parse %q: %v", v, err)
	}
	return d
}

func TestStore_TransactionLifecycle(t *testing.T) {
	dsn := getTestDSN(t)
	if err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := mustOpen(t, dsn)
	defer s.Close()
	truncateAll(t, s)

	if err := s.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}

	user, accs, cats, err := s.SeedDev(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if user.ID == uuid.Nil || len(accs) < 2 || len(cats) < 2 {
		t.Fatalf("unexpected seed: %+v %+v %+v", user, accs, cats)
	}
	wallet, checking := accs[0], accs[1]
	var expense budget.Category
	for _, c := range cats {
		if c.OperationType == budget.OperationExpense {
			expense = c
			break
		}
	}

	// create posts the signed amount to the balance
	tx := budget.Transaction{
		ID:         uuid.New(),
		UserID:     user.ID,
		Date:       time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Amount:     mustDec(t, "-30.00"),
		CategoryID: expense.ID,
		AccountID:  wallet.ID,
	}
	created, err := s.CreateTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.OperationType != budget.OperationExpense || created.AccountName == "" {
		t.Fatalf("joined fields: %+v", created)
	}
	a, err := s.AccountByID(ctx, user.ID, wallet.ID)
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if a.Balance.Cmp(mustDec(t, "-30.00")) != 0 {
		t.Fatalf("balance after create: %s", a.Balance)
	}

	// stale previous state conflicts
	upd := created
	upd.Amount = mustDec(t, "-40.00")
	if _, err := s.UpdateTransaction(ctx, upd, mustDec(t, "-29.00"), wallet.ID); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// move across accounts
	upd.AccountID = checking.ID
	if _, err := s.UpdateTransaction(ctx, upd, created.Amount, wallet.ID); err != nil {
		t.Fatalf("update: %v", err)
	}
	a, _ = s.AccountByID(ctx, user.ID, wallet.ID)
	if !a.Balance.IsZero() {
		t.Fatalf("source balance after move: %s", a.Balance)
	}
	b, _ := s.AccountByID(ctx, user.ID, checking.ID)
	if b.Balance.Cmp(mustDec(t, "-40.00")) != 0 {
		t.Fatalf("target balance after move: %s", b.Balance)
	}

	// aggregates
	sums, err := s.SumByWeek(ctx, user.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("sum by week: %v", err)
	}
	if len(sums) != 1 || sums[0].Bucket != 2 || sums[0].Total.Cmp(mustDec(t, "-40.00")) != 0 {
		t.Fatalf("week sums: %+v", sums)
	}
	msums, err := s.SumByMonth(ctx, user.ID, 2024)
	if err != nil {
		t.Fatalf("sum by month: %v", err)
	}
	if len(msums) != 1 || msums[0].Bucket != 1 {
		t.Fatalf("month sums: %+v", msums)
	}

	// range read with joins
	list, err := s.TransactionsByUser(ctx, user.ID, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].CategoryName == "" {
		t.Fatalf("list: %+v", list)
	}

	// delete reverses the balance effect
	if err := s.DeleteTransaction(ctx, user.ID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b, _ = s.AccountByID(ctx, user.ID, checking.ID)
	if !b.Balance.IsZero() {
		t.Fatalf("balance after delete: %s", b.Balance)
	}
	if _, err := s.TransactionByID(ctx, user.ID, created.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("deleted row must be gone, got %v", err)
	}
}

func TestStore_AccountTypesAndCategories(t *testing.T) {
	dsn := getTestDSN(t)
	if err := Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := mustOpen(t, dsn)
	defer s.Close()
	truncateAll(t, s)

	user, _, _, err := s.SeedDev(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	types, err := s.ListAccountTypes(ctx, user.ID)
	if err != nil || len(types) == 0 {
		t.Fatalf("list types: %v %v", types, err)
	}
	loans, err := s.CreateAccountType(ctx, budget.AccountType{ID: uuid.New(), UserID: user.ID, Name: "Loans", DisplayOrder: 2})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	if err := s.ReorderAccountTypes(ctx, user.ID, []uuid.UUID{loans.ID, types[0].ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	after, err := s.ListAccountTypes(ctx, user.ID)
	if err != nil {
		t.Fatalf("list types: %v", err)
	}
	if after[0].ID != loans.ID {
		t.Fatalf("reorder not applied: %+v", after)
	}

	op := budget.OperationExpense
	cats, err := s.ListCategories(ctx, user.ID, &op)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	for _, c := range cats {
		if c.OperationType != budget.OperationExpense {
			t.Fatalf("filter leaked: %+v", c)
		}
	}

	if err := s.DeleteAccountType(ctx, user.ID, uuid.New()); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("missing type delete: %v", err)
	}
}
