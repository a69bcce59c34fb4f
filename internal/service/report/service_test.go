package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

type fakeRepo struct {
	transactions []budget.Transaction
	weekSums     []budget.PeriodSum
	monthSums    []budget.PeriodSum

	gotFrom, gotTo time.Time
	gotYear        int
	gotAccountID   uuid.UUID
}

func (f *fakeRepo) TransactionsByUser(_ context.Context, _ uuid.UUID, from, to time.Time) ([]budget.Transaction, error) {
	f.gotFrom, f.gotTo = from, to
	return f.transactions, nil
}

func (f *fakeRepo) TransactionsByAccount(_ context.Context, _ uuid.UUID, accountID uuid.UUID, from, to time.Time) ([]budget.Transaction, error) {
	f.gotAccountID = accountID
	f.gotFrom, f.gotTo = from, to
	return f.transactions, nil
}

func (f *fakeRepo) SumByWeek(_ context.Context, _ uuid.UUID, from, to time.Time) ([]budget.PeriodSum, error) {
	f.gotFrom, f.gotTo = from, to
	return f.weekSums, nil
}

func (f *fakeRepo) SumByMonth(_ context.Context, _ uuid.UUID, year int) ([]budget.PeriodSum, error) {
	f.gotYear = year
	return f.monthSums, nil
}

func fixedNow() time.Time { return time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC) }

func newService(repo Repo) *service { return &service{repo: repo, now: fixedNow} }

func TestWeekly_ResolvesPeriodAndGapFills(t *testing.T) {
	repo := &fakeRepo{weekSums: []budget.PeriodSum{
		{Bucket: 1, OperationType: budget.OperationIncome, Total: d(t, "100.00")},
	}}
	svc := newService(repo)

	rep, err := svc.Weekly(context.Background(), uuid.New(), 1, 2024, "/w")
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if !repo.gotFrom.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) || !repo.gotTo.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("query range: %v..%v", repo.gotFrom, repo.gotTo)
	}
	if len(rep.Weeks) != 5 {
		t.Fatalf("expected 5 gap-filled weeks, got %d", len(rep.Weeks))
	}
	if rep.Weeks[len(rep.Weeks)-1].Income.Cmp(d(t, "100.00")) != 0 {
		t.Fatalf("week 1 income not attached: %+v", rep.Weeks)
	}
	if rep.Nav.PreviousMonth != 12 || rep.Nav.PreviousYear != 2023 || rep.Nav.ReturnURL != "/w" {
		t.Fatalf("navigation: %+v", rep.Nav)
	}
}

func TestWeekly_InvalidPeriodDefaultsToCurrentMonth(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo)

	rep, err := svc.Weekly(context.Background(), uuid.New(), 0, 0, "")
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if !rep.Reference.Equal(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("reference must default to the current month: %v", rep.Reference)
	}
	if len(rep.Weeks) != 5 {
		t.Fatalf("June has 30 days, expected 5 weeks, got %d", len(rep.Weeks))
	}
}

func TestMonthly_DefaultsYear(t *testing.T) {
	repo := &fakeRepo{monthSums: []budget.PeriodSum{
		{Bucket: 2, OperationType: budget.OperationExpense, Total: d(t, "-20.00")},
	}}
	svc := newService(repo)

	rep, err := svc.Monthly(context.Background(), uuid.New(), 0)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if rep.Year != 2023 || repo.gotYear != 2023 {
		t.Fatalf("year must default to current: %d / %d", rep.Year, repo.gotYear)
	}
	if len(rep.Months) != 12 || rep.Months[0].Month != 12 {
		t.Fatalf("months: %+v", rep.Months)
	}
}

func TestDetailed_GroupsByDate(t *testing.T) {
	day1 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{transactions: []budget.Transaction{
		{ID: uuid.New(), Date: day2, Amount: d(t, "10.00")},
		{ID: uuid.New(), Date: day1, Amount: d(t, "-4.00")},
		{ID: uuid.New(), Date: day1, Amount: d(t, "-6.00")},
	}}
	svc := newService(repo)

	rep, err := svc.Detailed(context.Background(), uuid.New(), 1, 2024, "")
	if err != nil {
		t.Fatalf("detailed: %v", err)
	}
	if len(rep.Groups) != 2 {
		t.Fatalf("expected 2 date groups, got %d", len(rep.Groups))
	}
	if !rep.Groups[0].Date.Equal(day2) || len(rep.Groups[1].Transactions) != 2 {
		t.Fatalf("grouping: %+v", rep.Groups)
	}
}

func TestDetailedByAccount_ScopesQuery(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(repo)
	accountID := uuid.New()

	if _, err := svc.DetailedByAccount(context.Background(), uuid.New(), accountID, 1, 2024, ""); err != nil {
		t.Fatalf("detailed by account: %v", err)
	}
	if repo.gotAccountID != accountID {
		t.Fatalf("account id not forwarded")
	}
}

func TestCalendarEvents(t *testing.T) {
	date := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{transactions: []budget.Transaction{
		{ID: uuid.New(), Date: date, Amount: d(t, "-4.00"), OperationType: budget.OperationExpense},
		{ID: uuid.New(), Date: date, Amount: d(t, "10.00"), OperationType: budget.OperationIncome},
	}}
	svc := newService(repo)

	events, err := svc.CalendarEvents(context.Background(), uuid.New(), date, date)
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Color != "red" || events[0].Title != "-4.00" || events[0].Start != "2024-01-03" {
		t.Fatalf("expense event: %+v", events[0])
	}
	if events[1].Color != "" {
		t.Fatalf("income events carry no color: %+v", events[1])
	}
}
