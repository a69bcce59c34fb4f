// Package postgres provides a pgx-backed storage implementation that satisfies
// the repository and writer interfaces used by the HTTP/API and services.
//
// Balances are maintained incrementally: every transaction write pairs the row
// mutation with a balance delta on the affected account(s), inside one SQL
// transaction. Amounts travel as text on the wire and as numeric(18,2) in the
// schema to keep decimal exactness end to end.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

// Store holds a pgx connection pool and implements the read/write interfaces
// used across the service layer. All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// Open establishes a pgx pool using the provided connection string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ready pings the pool to verify connectivity.
func (s *Store) Ready(ctx context.Context) error { return s.pool.Ping(ctx) }

// SeedDev inserts a user with one account type, two accounts and a few
// categories for quick local testing. Fresh UUIDs each run.
func (s *Store) SeedDev(ctx context.Context) (budget.User, []budget.Account, []budget.Category, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return budget.User{}, nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	user := budget.User{ID: uuid.New()}
	if _, err := tx.Exec(ctx, `insert into users (id, email) values ($1, null)`, user.ID); err != nil {
		return budget.User{}, nil, nil, err
	}
	at := budget.AccountType{ID: uuid.New(), UserID: user.ID, Name: "Cash", DisplayOrder: 1}
	if _, err := tx.Exec(ctx, `
		insert into account_types (id, user_id, name, display_order)
		values ($1,$2,$3,$4)
	`, at.ID, at.UserID, at.Name, at.DisplayOrder); err != nil {
		return budget.User{}, nil, nil, err
	}
	accs := []budget.Account{
		{ID: uuid.New(), UserID: user.ID, TypeID: at.ID, Name: "Wallet"},
		{ID: uuid.New(), UserID: user.ID, TypeID: at.ID, Name: "Checking"},
	}
	for _, a := range accs {
		if _, err := tx.Exec(ctx, `
			insert into accounts (id, user_id, type_id, name, balance)
			values ($1,$2,$3,$4,0)
		`, a.ID, a.UserID, a.TypeID, a.Name); err != nil {
			return budget.User{}, nil, nil, err
		}
	}
	cats := []budget.Category{
		{ID: uuid.New(), UserID: user.ID, Name: "Salary", OperationType: budget.OperationIncome},
		{ID: uuid.New(), UserID: user.ID, Name: "Groceries", OperationType: budget.OperationExpense},
		{ID: uuid.New(), UserID: user.ID, Name: "Rent", OperationType: budget.OperationExpense},
	}
	for _, c := range cats {
		if _, err := tx.Exec(ctx, `
			insert into categories (id, user_id, name, operation_type)
			values ($1,$2,$3,$4)
		`, c.ID, c.UserID, c.Name, string(c.OperationType)); err != nil {
			return budget.User{}, nil, nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return budget.User{}, nil, nil, err
	}
	return user, accs, cats, nil
}

func parseAmount(s string) (decimal.Decimal, error) { return decimal.Parse(s) }

// --- Account type reads ---

// ListAccountTypes returns the user's account types in display order.
func (s *Store) ListAccountTypes(ctx context.Context, userID uuid.UUID) ([]budget.AccountType, error) {
	rows, err := s.pool.Query(ctx, `
		select id, user_id, name, display_order
		from account_types
		where user_id = $1
		order by display_order, lower(name)
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]budget.AccountType, 0)
	for rows.Next() {
		var at budget.AccountType
		if err := rows.Scan(&at.ID, &at.UserID, &at.Name, &at.DisplayOrder); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// AccountTypeByID fetches a single account type by id for a user.
func (s *Store) AccountTypeByID(ctx context.Context, userID, id uuid.UUID) (budget.AccountType, error) {
	var at budget.AccountType
	err := s.pool.QueryRow(ctx, `
		select id, user_id, name, display_order
		from account_types
		where id = $1 and user_id = $2
	`, id, userID).Scan(&at.ID, &at.UserID, &at.Name, &at.DisplayOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return budget.AccountType{}, errs.ErrNotFound
	}
	if err != nil {
		return budget.AccountType{}, err
	}
	return at, nil
}

// --- Account type writes ---

func (s *Store) CreateAccountType(ctx context.Context, at budget.AccountType) (budget.AccountType, error) {
	_, err := s.pool.Exec(ctx, `
		insert into account_types (id, user_id, name, display_order)
		values ($1,$2,$3,$4)
	`, at.ID, at.UserID, at.Name, at.DisplayOrder)
	if err != nil {
		return budget.AccountType{}, err
	}
	return at, nil
}

func (s *Store) UpdateAccountType(ctx context.Context, at budget.AccountType) (budget.AccountType, error) {
	ct, err := s.pool.Exec(ctx, `
		update account_types
		set name=$1, display_order=$2
		where id=$3 and user_id=$4
	`, at.Name, at.DisplayOrder, at.ID, at.UserID)
	if err != nil {
		return budget.AccountType{}, err
	}
	if ct.RowsAffected() == 0 {
		return budget.AccountType{}, errs.ErrNotFound
	}
	return at, nil
}

func (s *Store) DeleteAccountType(ctx context.Context, userID, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from account_types where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ReorderAccountTypes rewrites display_order by position, all or nothing.
func (s *Store) ReorderAccountTypes(ctx context.Context, userID uuid.UUID, ordered []uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	for i, id := range ordered {
		ct, err := tx.Exec(ctx, `
			update account_types set display_order=$1 where id=$2 and user_id=$3
		`, i+1, id, userID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errs.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

// --- Account reads ---

// ListAccounts returns the user's accounts grouped by their type's display
// order, then name.
func (s *Store) ListAccounts(ctx context.Context, userID uuid.UUID) ([]budget.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select a.id, a.user_id, a.type_id, a.name, a.balance::text
		from accounts a
		join account_types at on at.id = a.type_id
		where a.user_id = $1
		order by at.display_order, lower(a.name)
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// AccountByID fetches a single account by id for a user.
func (s *Store) AccountByID(ctx context.Context, userID, accountID uuid.UUID) (budget.Account, error) {
	var a budget.Account
	var bal string
	err := s.pool.QueryRow(ctx, `
		select id, user_id, type_id, name, balance::text
		from accounts
		where id = $1 and user_id = $2
	`, accountID, userID).Scan(&a.ID, &a.UserID, &a.TypeID, &a.Name, &bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return budget.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return budget.Account{}, err
	}
	if a.Balance, err = parseAmount(bal); err != nil {
		return budget.Account{}, err
	}
	return a, nil
}

// AccountsByTypeID returns the user's accounts of one type.
func (s *Store) AccountsByTypeID(ctx context.Context, userID, typeID uuid.UUID) ([]budget.Account, error) {
	rows, err := s.pool.Query(ctx, `
		select id, user_id, type_id, name, balance::text
		from accounts
		where user_id = $1 and type_id = $2
	`, userID, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]budget.Account, error) {
	out := make([]budget.Account, 0)
	for rows.Next() {
		var a budget.Account
		var bal string
		if err := rows.Scan(&a.ID, &a.UserID, &a.TypeID, &a.Name, &bal); err != nil {
			return nil, err
		}
		var err error
		if a.Balance, err = parseAmount(bal); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AccountHasTransactions reports whether any transaction references the account.
func (s *Store) AccountHasTransactions(ctx context.Context, userID, accountID uuid.UUID) (bool, error) {
	var used bool
	err := s.pool.QueryRow(ctx, `
		select exists (select 1 from transactions where user_id=$1 and account_id=$2)
	`, userID, accountID).Scan(&used)
	return used, err
}

// --- Account writes ---

func (s *Store) CreateAccount(ctx context.Context, a budget.Account) (budget.Account, error) {
	_, err := s.pool.Exec(ctx, `
		insert into accounts (id, user_id, type_id, name, balance)
		values ($1,$2,$3,$4,$5::numeric)
	`, a.ID, a.UserID, a.TypeID, a.Name, a.Balance.String())
	if err != nil {
		return budget.Account{}, err
	}
	return a, nil
}

// UpdateAccount updates name and type and posts delta to the balance column
// in one statement, so a correction can never apply without the row edit.
// The resulting stored balance is returned.
func (s *Store) UpdateAccount(ctx context.Context, a budget.Account, delta decimal.Decimal) (budget.Account, error) {
	var bal string
	err := s.pool.QueryRow(ctx, `
		update accounts
		set name=$1, type_id=$2, balance = balance + $3::numeric
		where id=$4 and user_id=$5
		returning balance::text
	`, a.Name, a.TypeID, delta.String(), a.ID, a.UserID).Scan(&bal)
	if errors.Is(err, pgx.ErrNoRows) {
		return budget.Account{}, errs.ErrNotFound
	}
	if err != nil {
		return budget.Account{}, err
	}
	if a.Balance, err = parseAmount(bal); err != nil {
		return budget.Account{}, err
	}
	return a, nil
}

func (s *Store) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from accounts where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Category reads ---

// ListCategories returns the user's categories in name order, optionally
// filtered by operation type.
func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID, op *budget.OperationType) ([]budget.Category, error) {
	q := `
		select id, user_id, name, operation_type
		from categories
		where user_id = $1
	`
	args := []any{userID}
	if op != nil {
		q += ` and operation_type = $2`
		args = append(args, string(*op))
	}
	q += ` order by lower(name)`
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]budget.Category, 0)
	for rows.Next() {
		var c budget.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.OperationType); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryByID fetches a single category by id for a user.
func (s *Store) CategoryByID(ctx context.Context, userID, id uuid.UUID) (budget.Category, error) {
	var c budget.Category
	err := s.pool.QueryRow(ctx, `
		select id, user_id, name, operation_type
		from categories
		where id = $1 and user_id = $2
	`, id, userID).Scan(&c.ID, &c.UserID, &c.Name, &c.OperationType)
	if errors.Is(err, pgx.ErrNoRows) {
		return budget.Category{}, errs.ErrNotFound
	}
	if err != nil {
		return budget.Category{}, err
	}
	return c, nil
}

// CategoryHasTransactions reports whether any transaction references the category.
func (s *Store) CategoryHasTransactions(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	var used bool
	err := s.pool.QueryRow(ctx, `
		select exists (select 1 from transactions where user_id=$1 and category_id=$2)
	`, userID, categoryID).Scan(&used)
	return used, err
}

// --- Category writes ---

func (s *Store) CreateCategory(ctx context.Context, c budget.Category) (budget.Category, error) {
	_, err := s.pool.Exec(ctx, `
		insert into categories (id, user_id, name, operation_type)
		values ($1,$2,$3,$4)
	`, c.ID, c.UserID, c.Name, string(c.OperationType))
	if err != nil {
		return budget.Category{}, err
	}
	return c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c budget.Category) (budget.Category, error) {
	ct, err := s.pool.Exec(ctx, `
		update categories
		set name=$1, operation_type=$2
		where id=$3 and user_id=$4
	`, c.Name, string(c.OperationType), c.ID, c.UserID)
	if err != nil {
		return budget.Category{}, err
	}
	if ct.RowsAffected() == 0 {
		return budget.Category{}, errs.ErrNotFound
	}
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	ct, err := s.pool.Exec(ctx, `delete from categories where id=$1 and user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// --- Transaction reads ---

const txSelect = `
	select t.id, t.user_id, t.tx_date, t.amount::text, t.category_id, t.account_id, t.note,
	       c.operation_type, c.name, a.name
	from transactions t
	join categories c on c.id = t.category_id
	join accounts a on a.id = t.account_id
`

func scanTransaction(row pgx.Row) (budget.Transaction, error) {
	var t budget.Transaction
	var amt string
	err := row.Scan(&t.ID, &t.UserID, &t.Date, &amt, &t.CategoryID, &t.AccountID, &t.Note,
		&t.OperationType, &t.CategoryName, &t.AccountName)
	if errors.Is(err, pgx.ErrNoRows) {
		return budget.Transaction{}, errs.ErrNotFound
	}
	if err != nil {
		return budget.Transaction{}, err
	}
	if t.Amount, err = parseAmount(amt); err != nil {
		return budget.Transaction{}, err
	}
	return t, nil
}

// TransactionByID fetches a single transaction with names and the operation
// type inherited from its category.
func (s *Store) TransactionByID(ctx context.Context, userID, id uuid.UUID) (budget.Transaction, error) {
	row := s.pool.QueryRow(ctx, txSelect+` where t.id = $1 and t.user_id = $2`, id, userID)
	return scanTransaction(row)
}

// TransactionsByUser returns the user's transactions within [from, to],
// newest date first, insertion order within a date.
func (s *Store) TransactionsByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]budget.Transaction, error) {
	rows, err := s.pool.Query(ctx, txSelect+`
		where t.user_id = $1 and t.tx_date between $2 and $3
		order by t.tx_date desc, t.created_at asc, t.id asc
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// TransactionsByAccount is TransactionsByUser narrowed to one account.
func (s *Store) TransactionsByAccount(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) ([]budget.Transaction, error) {
	rows, err := s.pool.Query(ctx, txSelect+`
		where t.user_id = $1 and t.account_id = $2 and t.tx_date between $3 and $4
		order by t.tx_date desc, t.created_at asc, t.id asc
	`, userID, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]budget.Transaction, error) {
	out := make([]budget.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumByWeek aggregates the range into (week offset, operation type, total)
// rows, week 1 starting at from. Dates subtract to whole days in postgres,
// so the bucket is integer division by seven.
func (s *Store) SumByWeek(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]budget.PeriodSum, error) {
	rows, err := s.pool.Query(ctx, `
		select (t.tx_date - $2::date) / 7 + 1 as week, c.operation_type, sum(t.amount)::text
		from transactions t
		join categories c on c.id = t.category_id
		where t.user_id = $1 and t.tx_date between $2 and $3
		group by 1, 2
		order by 1, 2
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSums(rows)
}

// SumByMonth aggregates one year into (month, operation type, total) rows.
func (s *Store) SumByMonth(ctx context.Context, userID uuid.UUID, year int) ([]budget.PeriodSum, error) {
	rows, err := s.pool.Query(ctx, `
		select extract(month from t.tx_date)::int, c.operation_type, sum(t.amount)::text
		from transactions t
		join categories c on c.id = t.category_id
		where t.user_id = $1 and extract(year from t.tx_date) = $2
		group by 1, 2
		order by 1, 2
	`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSums(rows)
}

func collectSums(rows pgx.Rows) ([]budget.PeriodSum, error) {
	out := make([]budget.PeriodSum, 0)
	for rows.Next() {
		var ps budget.PeriodSum
		var total string
		if err := rows.Scan(&ps.Bucket, &ps.OperationType, &total); err != nil {
			return nil, err
		}
		var err error
		if ps.Total, err = parseAmount(total); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// --- Transaction writes ---

// CreateTransaction inserts the row and posts its signed amount to the
// account balance in one SQL transaction.
func (s *Store) CreateTransaction(ctx context.Context, t budget.Transaction) (budget.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return budget.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx, `
		insert into transactions (id, user_id, tx_date, amount, category_id, account_id, note)
		values ($1,$2,$3,$4::numeric,$5,$6,$7)
	`, t.ID, t.UserID, t.Date, t.Amount.String(), t.CategoryID, t.AccountID, t.Note); err != nil {
		return budget.Transaction{}, err
	}
	if err := adjustBalanceTx(ctx, tx, t.UserID, t.AccountID, t.Amount); err != nil {
		return budget.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return budget.Transaction{}, err
	}
	return s.TransactionByID(ctx, t.UserID, t.ID)
}

// UpdateTransaction locks the stored row, verifies the caller's captured
// previous state still matches, reverses the old balance effect and applies
// the new one, then rewrites the row. A mismatch means the row changed after
// the caller read it and surfaces as a conflict.
func (s *Store) UpdateTransaction(ctx context.Context, t budget.Transaction, prevAmount decimal.Decimal, prevAccountID uuid.UUID) (budget.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return budget.Transaction{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	var curAmt string
	var curAccount uuid.UUID
	err = tx.QueryRow(ctx, `
		select amount::text, account_id from transactions
		where id = $1 and user_id = $2
		for update
	`, t.ID, t.UserID).Scan(&curAmt, &curAccount)
	if errors.Is(err, pgx.ErrNoRows) {
		return budget.Transaction{}, errs.ErrNotFound
	}
	if err != nil {
		return budget.Transaction{}, err
	}
	cur, err := parseAmount(curAmt)
	if err != nil {
		return budget.Transaction{}, err
	}
	if cur.Cmp(prevAmount) != 0 || curAccount != prevAccountID {
		return budget.Transaction{}, errs.ErrConflict
	}
	if err := adjustBalanceTx(ctx, tx, t.UserID, curAccount, cur.Neg()); err != nil {
		return budget.Transaction{}, err
	}
	if err := adjustBalanceTx(ctx, tx, t.UserID, t.AccountID, t.Amount); err != nil {
		return budget.Transaction{}, err
	}
	if _, err := tx.Exec(ctx, `
		update transactions
		set tx_date=$1, amount=$2::numeric, category_id=$3, account_id=$4, note=$5
		where id=$6 and user_id=$7
	`, t.Date, t.Amount.String(), t.CategoryID, t.AccountID, t.Note, t.ID, t.UserID); err != nil {
		return budget.Transaction{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return budget.Transaction{}, err
	}
	return s.TransactionByID(ctx, t.UserID, t.ID)
}

// DeleteTransaction removes the row and reverses its balance effect.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	var amt string
	var accountID uuid.UUID
	err = tx.QueryRow(ctx, `
		select amount::text, account_id from transactions
		where id = $1 and user_id = $2
		for update
	`, id, userID).Scan(&amt, &accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	if err != nil {
		return err
	}
	amount, err := parseAmount(amt)
	if err != nil {
		return err
	}
	if err := adjustBalanceTx(ctx, tx, userID, accountID, amount.Neg()); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `delete from transactions where id=$1 and user_id=$2`, id, userID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func adjustBalanceTx(ctx context.Context, tx pgx.Tx, userID, accountID uuid.UUID, delta decimal.Decimal) error {
	ct, err := tx.Exec(ctx, `
		update accounts set balance = balance + $1::numeric where id=$2 and user_id=$3
	`, delta.String(), accountID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
