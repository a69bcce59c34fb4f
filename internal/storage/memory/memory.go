// Package memory provides a simple in-memory implementation used for
// development and tests. A single mutex guards every map, which doubles as
// the atomicity guarantee for "transaction row + balance delta" writes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

// Store is an in-memory implementation of the repository and writer
// interfaces used by the services.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]struct{}
	accountTypes map[uuid.UUID]budget.AccountType
	accounts     map[uuid.UUID]budget.Account
	categories   map[uuid.UUID]budget.Category
	transactions map[uuid.UUID]*budget.Transaction
	// txOrder preserves insertion order; range scans return rows in this
	// storage order within equal dates.
	txOrder []uuid.UUID
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]struct{}),
		accountTypes: make(map[uuid.UUID]budget.AccountType),
		accounts:     make(map[uuid.UUID]budget.Account),
		categories:   make(map[uuid.UUID]budget.Category),
		transactions: make(map[uuid.UUID]*budget.Transaction),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedUser(u budget.User) { s.mu.Lock(); s.users[u.ID] = struct{}{}; s.mu.Unlock() }

func (s *Store) SeedAccountType(at budget.AccountType) {
	s.mu.Lock()
	s.accountTypes[at.ID] = at
	s.mu.Unlock()
}

func (s *Store) SeedAccount(a budget.Account) {
	s.mu.Lock()
	s.accounts[a.ID] = a
	s.mu.Unlock()
}

func (s *Store) SeedCategory(c budget.Category) {
	s.mu.Lock()
	s.categories[c.ID] = c
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.users = map[uuid.UUID]struct{}{}
	s.accountTypes = map[uuid.UUID]budget.AccountType{}
	s.accounts = map[uuid.UUID]budget.Account{}
	s.categories = map[uuid.UUID]budget.Category{}
	s.transactions = map[uuid.UUID]*budget.Transaction{}
	s.txOrder = nil
	s.mu.Unlock()
}

// --- Account type reads/writes ---

func (s *Store) ListAccountTypes(_ context.Context, userID uuid.UUID) ([]budget.AccountType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.AccountType, 0)
	for _, at := range s.accountTypes {
		if at.UserID == userID {
			out = append(out, at)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) AccountTypeByID(_ context.Context, userID, id uuid.UUID) (budget.AccountType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.accountTypes[id]
	if !ok || at.UserID != userID {
		return budget.AccountType{}, errs.ErrNotFound
	}
	return at, nil
}

func (s *Store) CreateAccountType(_ context.Context, at budget.AccountType) (budget.AccountType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accountTypes[at.ID] = at
	return at, nil
}

func (s *Store) UpdateAccountType(_ context.Context, at budget.AccountType) (budget.AccountType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accountTypes[at.ID]
	if !ok || cur.UserID != at.UserID {
		return budget.AccountType{}, errs.ErrNotFound
	}
	s.accountTypes[at.ID] = at
	return at, nil
}

func (s *Store) DeleteAccountType(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.accountTypes[id]
	if !ok || at.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.accountTypes, id)
	return nil
}

func (s *Store) ReorderAccountTypes(_ context.Context, userID uuid.UUID, ordered []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ordered {
		at, ok := s.accountTypes[id]
		if !ok || at.UserID != userID {
			return errs.ErrNotFound
		}
		at.DisplayOrder = i + 1
		s.accountTypes[id] = at
	}
	return nil
}

// --- Account reads/writes ---

// ListAccounts returns the user's accounts ordered by their type's display
// order, then name, mirroring the SQL ordering of the postgres store.
func (s *Store) ListAccounts(_ context.Context, userID uuid.UUID) ([]budget.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		oi := s.accountTypes[out[i].TypeID].DisplayOrder
		oj := s.accountTypes[out[j].TypeID].DisplayOrder
		if oi != oj {
			return oi < oj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) AccountByID(_ context.Context, userID, accountID uuid.UUID) (budget.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return budget.Account{}, errs.ErrNotFound
	}
	return a, nil
}

func (s *Store) AccountsByTypeID(_ context.Context, userID, typeID uuid.UUID) ([]budget.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Account, 0)
	for _, a := range s.accounts {
		if a.UserID == userID && a.TypeID == typeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) AccountHasTransactions(_ context.Context, userID, accountID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.UserID == userID && t.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateAccount(_ context.Context, a budget.Account) (budget.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return a, nil
}

// UpdateAccount persists name and type changes and posts delta to the stored
// balance under the same lock, so a correction can never apply without the
// row edit. The balance is never copied from the argument.
func (s *Store) UpdateAccount(_ context.Context, a budget.Account, delta decimal.Decimal) (budget.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok || cur.UserID != a.UserID {
		return budget.Account{}, errs.ErrNotFound
	}
	if !delta.IsZero() {
		v, err := cur.Balance.Add(delta)
		if err != nil {
			return budget.Account{}, err
		}
		cur.Balance = v
	}
	cur.Name = a.Name
	cur.TypeID = a.TypeID
	s.accounts[a.ID] = cur
	return cur, nil
}

func (s *Store) DeleteAccount(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// adjustBalanceLocked posts a delta to an account. Caller must hold s.mu.
func (s *Store) adjustBalanceLocked(userID, accountID uuid.UUID, delta decimal.Decimal) error {
	a, ok := s.accounts[accountID]
	if !ok || a.UserID != userID {
		return errs.ErrNotFound
	}
	v, err := a.Balance.Add(delta)
	if err != nil {
		return err
	}
	a.Balance = v
	s.accounts[accountID] = a
	return nil
}

// --- Category reads/writes ---

func (s *Store) ListCategories(_ context.Context, userID uuid.UUID, op *budget.OperationType) ([]budget.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Category, 0)
	for _, c := range s.categories {
		if c.UserID != userID {
			continue
		}
		if op != nil && c.OperationType != *op {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (s *Store) CategoryByID(_ context.Context, userID, id uuid.UUID) (budget.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return budget.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) CategoryHasTransactions(_ context.Context, userID, categoryID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.UserID == userID && t.CategoryID == categoryID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateCategory(_ context.Context, c budget.Category) (budget.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c budget.Category) (budget.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.categories[c.ID]
	if !ok || cur.UserID != c.UserID {
		return budget.Category{}, errs.ErrNotFound
	}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return errs.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- Transaction reads ---

func (s *Store) TransactionByID(_ context.Context, userID, id uuid.UUID) (budget.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return budget.Transaction{}, errs.ErrNotFound
	}
	return s.withNamesLocked(*t), nil
}

// TransactionsByUser returns the user's transactions within [from, to],
// newest date first, storage order within a date.
func (s *Store) TransactionsByUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]budget.Transaction, error) {
	return s.scan(userID, uuid.Nil, from, to), nil
}

// TransactionsByAccount is TransactionsByUser narrowed to one account.
func (s *Store) TransactionsByAccount(_ context.Context, userID, accountID uuid.UUID, from, to time.Time) ([]budget.Transaction, error) {
	return s.scan(userID, accountID, from, to), nil
}

func (s *Store) scan(userID, accountID uuid.UUID, from, to time.Time) []budget.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]budget.Transaction, 0)
	for _, id := range s.txOrder {
		t, ok := s.transactions[id]
		if !ok || t.UserID != userID {
			continue
		}
		if accountID != uuid.Nil && t.AccountID != accountID {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		out = append(out, s.withNamesLocked(*t))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// withNamesLocked denormalizes category and account names onto the row, as
// the SQL reads do via joins. Caller must hold s.mu.
func (s *Store) withNamesLocked(t budget.Transaction) budget.Transaction {
	if c, ok := s.categories[t.CategoryID]; ok {
		t.CategoryName = c.Name
		t.OperationType = c.OperationType
	}
	if a, ok := s.accounts[t.AccountID]; ok {
		t.AccountName = a.Name
	}
	return t
}

// SumByWeek aggregates the range's transactions into (week offset, operation
// type, total) rows, week 1 starting at from. This is the flat-list path the
// SQL stores do with date arithmetic.
func (s *Store) SumByWeek(_ context.Context, userID uuid.UUID, from, to time.Time) ([]budget.PeriodSum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregateLocked(userID, func(t budget.Transaction) (int, bool) {
		if t.Date.Before(from) || t.Date.After(to) {
			return 0, false
		}
		days := int(t.Date.Sub(from).Hours() / 24)
		return days/7 + 1, true
	}), nil
}

// SumByMonth aggregates one year's transactions into (month, operation type,
// total) rows.
func (s *Store) SumByMonth(_ context.Context, userID uuid.UUID, year int) ([]budget.PeriodSum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregateLocked(userID, func(t budget.Transaction) (int, bool) {
		if t.Date.Year() != year {
			return 0, false
		}
		return int(t.Date.Month()), true
	}), nil
}

func (s *Store) aggregateLocked(userID uuid.UUID, bucket func(budget.Transaction) (int, bool)) []budget.PeriodSum {
	type key struct {
		bucket int
		op     budget.OperationType
	}
	totals := make(map[key]decimal.Decimal)
	for _, t := range s.transactions {
		if t.UserID != userID {
			continue
		}
		row := s.withNamesLocked(*t)
		b, ok := bucket(row)
		if !ok {
			continue
		}
		k := key{bucket: b, op: row.OperationType}
		if v, err := totals[k].Add(row.Amount); err == nil {
			totals[k] = v
		}
	}
	out := make([]budget.PeriodSum, 0, len(totals))
	for k, total := range totals {
		out = append(out, budget.PeriodSum{Bucket: k.bucket, OperationType: k.op, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		return out[i].OperationType < out[j].OperationType
	})
	return out
}

// --- Transaction writes ---

// CreateTransaction inserts the row and posts its signed amount to the
// account balance under one lock.
func (s *Store) CreateTransaction(_ context.Context, t budget.Transaction) (budget.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.adjustBalanceLocked(t.UserID, t.AccountID, t.Amount); err != nil {
		return budget.Transaction{}, err
	}
	cp := t
	s.transactions[cp.ID] = &cp
	s.txOrder = append(s.txOrder, cp.ID)
	return s.withNamesLocked(cp), nil
}

// UpdateTransaction re-reads the stored row, verifies the caller's captured
// previous state still matches, reverses the old effect and applies the new
// one, all under one lock.
func (s *Store) UpdateTransaction(_ context.Context, t budget.Transaction, prevAmount decimal.Decimal, prevAccountID uuid.UUID) (budget.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.transactions[t.ID]
	if !ok || cur.UserID != t.UserID {
		return budget.Transaction{}, errs.ErrNotFound
	}
	if cur.Amount.Cmp(prevAmount) != 0 || cur.AccountID != prevAccountID {
		return budget.Transaction{}, errs.ErrConflict
	}
	if err := s.adjustBalanceLocked(t.UserID, cur.AccountID, cur.Amount.Neg()); err != nil {
		return budget.Transaction{}, err
	}
	if err := s.adjustBalanceLocked(t.UserID, t.AccountID, t.Amount); err != nil {
		// restore the reversed delta so the failed write has no effect
		_ = s.adjustBalanceLocked(t.UserID, cur.AccountID, cur.Amount)
		return budget.Transaction{}, err
	}
	cp := t
	s.transactions[t.ID] = &cp
	return s.withNamesLocked(cp), nil
}

// DeleteTransaction removes the row and reverses its balance effect.
func (s *Store) DeleteTransaction(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.UserID != userID {
		return errs.ErrNotFound
	}
	if err := s.adjustBalanceLocked(userID, t.AccountID, t.Amount.Neg()); err != nil {
		return err
	}
	delete(s.transactions, id)
	for i, oid := range s.txOrder {
		if oid == id {
			s.txOrder = append(s.txOrder[:i], s.txOrder[i+1:]...)
			break
		}
	}
	return nil
}
