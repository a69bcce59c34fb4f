package budget

// The bucketing engine turns flat aggregate rows into complete, gap-filled
// weekly or monthly buckets. Pure functions, no I/O: the stores produce the
// aggregate rows, these functions shape them.

import (
	"sort"
	"time"

	"github.com/govalues/decimal"
)

// PeriodSum is one aggregate row from a store: a bucket index (week number
// within a month, or month number within a year), the operation type the
// amounts belong to, and their signed total.
type PeriodSum struct {
	Bucket        int
	OperationType OperationType
	Total         decimal.Decimal
}

// WeekBucket is one gap-filled week of a month. Income and Expense are
// independent signed totals; a week with only expenses reports income 0.
type WeekBucket struct {
	Week    int
	Start   time.Time
	End     time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// MonthBucket is one gap-filled month of a year. Reference is the first day
// of the month.
type MonthBucket struct {
	Month     int
	Reference time.Time
	Income    decimal.Decimal
	Expense   decimal.Decimal
}

// WeeklyBuckets partitions the days of a month into consecutive chunks of
// seven (the last chunk may be short), numbered 1..N in calendar order, and
// distributes the aggregate rows over them. Every chunk appears in the output
// with its start and end dates even when no row matches it. Most recent week
// first.
func WeeklyBuckets(month, year int, sums []PeriodSum) []WeekBucket {
	days := daysIn(month, year)
	n := (days + 6) / 7
	out := make([]WeekBucket, n)
	for i := range out {
		first := i*7 + 1
		last := first + 6
		if last > days {
			last = days
		}
		out[i] = WeekBucket{
			Week:  i + 1,
			Start: time.Date(year, time.Month(month), first, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.Month(month), last, 0, 0, 0, 0, time.UTC),
		}
	}
	for _, s := range sums {
		if s.Bucket < 1 || s.Bucket > n {
			continue
		}
		b := &out[s.Bucket-1]
		switch s.OperationType {
		case OperationIncome:
			if v, err := b.Income.Add(s.Total); err == nil {
				b.Income = v
			}
		case OperationExpense:
			if v, err := b.Expense.Add(s.Total); err == nil {
				b.Expense = v
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week > out[j].Week })
	return out
}

// MonthlyBuckets produces the twelve months of a year with independent income
// and expense totals, every month present regardless of data sparsity,
// ordered December first.
func MonthlyBuckets(year int, sums []PeriodSum) []MonthBucket {
	out := make([]MonthBucket, 12)
	for m := 1; m <= 12; m++ {
		out[m-1] = MonthBucket{
			Month:     m,
			Reference: time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
		}
	}
	for _, s := range sums {
		if s.Bucket < 1 || s.Bucket > 12 {
			continue
		}
		b := &out[s.Bucket-1]
		switch s.OperationType {
		case OperationIncome:
			if v, err := b.Income.Add(s.Total); err == nil {
				b.Income = v
			}
		case OperationExpense:
			if v, err := b.Expense.Add(s.Total); err == nil {
				b.Expense = v
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out
}

// DateGroup holds the transactions of one calendar date in storage order.
type DateGroup struct {
	Date         time.Time
	Transactions []Transaction
}

// GroupByDate groups transactions by their exact date for the detailed view:
// dates descending, input order preserved within a date.
func GroupByDate(list []Transaction) []DateGroup {
	cp := make([]Transaction, len(list))
	copy(cp, list)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.After(cp[j].Date) })

	out := make([]DateGroup, 0)
	for _, t := range cp {
		if n := len(out); n > 0 && out[n-1].Date.Equal(t.Date) {
			out[n-1].Transactions = append(out[n-1].Transactions, t)
			continue
		}
		out = append(out, DateGroup{Date: t.Date, Transactions: []Transaction{t}})
	}
	return out
}
