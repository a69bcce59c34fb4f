// Package report assembles the weekly, monthly, detailed and calendar views:
// it resolves the effective period, queries the store for rows scoped to the
// user, and lets the bucketing engine shape them.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/errs"
)

// Repo defines the read operations needed by the assembler.
type Repo interface {
	TransactionsByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]budget.Transaction, error)
	TransactionsByAccount(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) ([]budget.Transaction, error)
	SumByWeek(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]budget.PeriodSum, error)
	SumByMonth(ctx context.Context, userID uuid.UUID, year int) ([]budget.PeriodSum, error)
}

// DetailedReport groups the period's transactions by exact date, newest date
// first, preserving storage order within a date.
type DetailedReport struct {
	Start  time.Time
	End    time.Time
	Groups []budget.DateGroup
	Nav    budget.Navigation
}

// WeeklyReport carries the gap-filled week buckets of one month.
type WeeklyReport struct {
	Reference time.Time
	Weeks     []budget.WeekBucket
	Nav       budget.Navigation
}

// MonthlyReport carries the twelve gap-filled month buckets of one year.
type MonthlyReport struct {
	Year   int
	Months []budget.MonthBucket
}

// CalendarEvent is one transaction rendered for the calendar view.
type CalendarEvent struct {
	Title string
	Start string
	End   string
	Color string
}

// Service exposes the report assembly operations. Identity is an explicit
// user id on every call; resolving it from a request happens at the boundary.
type Service interface {
	Detailed(ctx context.Context, userID uuid.UUID, month, year int, returnURL string) (DetailedReport, error)
	DetailedByAccount(ctx context.Context, userID, accountID uuid.UUID, month, year int, returnURL string) (DetailedReport, error)
	Weekly(ctx context.Context, userID uuid.UUID, month, year int, returnURL string) (WeeklyReport, error)
	Monthly(ctx context.Context, userID uuid.UUID, year int) (MonthlyReport, error)
	CalendarEvents(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CalendarEvent, error)
	ByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]budget.Transaction, error)
}

type service struct {
	repo Repo
	now  func() time.Time
}

// New constructs the report service.
func New(repo Repo) Service { return &service{repo: repo, now: time.Now} }

func (s *service) Detailed(ctx context.Context, userID uuid.UUID, month, year int, returnURL string) (DetailedReport, error) {
	if userID == uuid.Nil {
		return DetailedReport{}, errs.ErrInvalid
	}
	start, end := budget.ResolvePeriod(month, year, s.now())
	rows, err := s.repo.TransactionsByUser(ctx, userID, start, end)
	if err != nil {
		return DetailedReport{}, err
	}
	return DetailedReport{
		Start:  start,
		End:    end,
		Groups: budget.GroupByDate(rows),
		Nav:    budget.NavigationFor(start, returnURL),
	}, nil
}

func (s *service) DetailedByAccount(ctx context.Context, userID, accountID uuid.UUID, month, year int, returnURL string) (DetailedReport, error) {
	if userID == uuid.Nil || accountID == uuid.Nil {
		return DetailedReport{}, errs.ErrInvalid
	}
	start, end := budget.ResolvePeriod(month, year, s.now())
	rows, err := s.repo.TransactionsByAccount(ctx, userID, accountID, start, end)
	if err != nil {
		return DetailedReport{}, err
	}
	return DetailedReport{
		Start:  start,
		End:    end,
		Groups: budget.GroupByDate(rows),
		Nav:    budget.NavigationFor(start, returnURL),
	}, nil
}

func (s *service) Weekly(ctx context.Context, userID uuid.UUID, month, year int, returnURL string) (WeeklyReport, error) {
	if userID == uuid.Nil {
		return WeeklyReport{}, errs.ErrInvalid
	}
	start, end := budget.ResolvePeriod(month, year, s.now())
	sums, err := s.repo.SumByWeek(ctx, userID, start, end)
	if err != nil {
		return WeeklyReport{}, err
	}
	return WeeklyReport{
		Reference: start,
		Weeks:     budget.WeeklyBuckets(int(start.Month()), start.Year(), sums),
		Nav:       budget.NavigationFor(start, returnURL),
	}, nil
}

func (s *service) Monthly(ctx context.Context, userID uuid.UUID, year int) (MonthlyReport, error) {
	if userID == uuid.Nil {
		return MonthlyReport{}, errs.ErrInvalid
	}
	if year <= 1900 {
		year = s.now().Year()
	}
	sums, err := s.repo.SumByMonth(ctx, userID, year)
	if err != nil {
		return MonthlyReport{}, err
	}
	return MonthlyReport{Year: year, Months: budget.MonthlyBuckets(year, sums)}, nil
}

// CalendarEvents maps the range's transactions onto calendar entries, one per
// transaction, expenses flagged for the UI.
func (s *service) CalendarEvents(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CalendarEvent, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	rows, err := s.repo.TransactionsByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	out := make([]CalendarEvent, 0, len(rows))
	for _, t := range rows {
		ev := CalendarEvent{
			Title: t.Amount.String(),
			Start: t.Date.Format("2006-01-02"),
			End:   t.Date.Format("2006-01-02"),
		}
		if t.OperationType == budget.OperationExpense {
			ev.Color = "red"
		}
		out = append(out, ev)
	}
	return out, nil
}

func (s *service) ByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]budget.Transaction, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrInvalid
	}
	return s.repo.TransactionsByUser(ctx, userID, date, date)
}
