package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// OperationType classifies a category, and by extension its transactions,
// as money coming in or going out.
type OperationType string

const (
	// OperationIncome marks categories whose transactions increase a balance.
	OperationIncome OperationType = "income"
	// OperationExpense marks categories whose transactions decrease a balance.
	OperationExpense OperationType = "expense"
)

// Valid reports whether op is one of the two known operation types.
func (op OperationType) Valid() bool {
	return op == OperationIncome || op == OperationExpense
}

// Sign returns +1 for income and -1 for expense.
func (op OperationType) Sign() int {
	if op == OperationExpense {
		return -1
	}
	return 1
}

// User captures the owner of budgeting data.
type User struct {
	ID    uuid.UUID
	Email *string
}

// AccountType is a user-defined grouping for accounts (e.g. checking, cash,
// loans). DisplayOrder is controlled by the user and drives listing order.
type AccountType struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Name         string
	DisplayOrder int
}

// Account holds a running balance: the sum of the signed amounts of all its
// transactions. The balance is stored, not recomputed on read, so every
// transaction write must post the matching delta.
type Account struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	TypeID  uuid.UUID
	Name    string
	Balance decimal.Decimal
}

// Category labels transactions and owns the operation type its transactions
// inherit.
type Category struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	OperationType OperationType
}

// NoteMaxLen bounds the free-text note on a transaction.
const NoteMaxLen = 1000

// Transaction is a single income or expense movement against an account.
// Amount is signed: negative for expenses, positive for income. The sign is
// derived from the operation type, never supplied by the caller.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Date          time.Time
	Amount        decimal.Decimal
	CategoryID    uuid.UUID
	AccountID     uuid.UUID
	Note          string
	OperationType OperationType
	// CategoryName and AccountName are populated on report reads.
	CategoryName string
	AccountName  string
}

// SignedAmount normalizes an unsigned edit-time amount into the stored form:
// the absolute value is taken exactly once, then negated for expenses. An
// already-negative input therefore cannot double-apply the sign.
func SignedAmount(amount decimal.Decimal, op OperationType) decimal.Decimal {
	a := amount.Abs()
	if op == OperationExpense {
		return a.Neg()
	}
	return a
}
