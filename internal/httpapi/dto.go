package httpapi

// Request and response DTOs. Amounts travel as decimal strings to avoid
// binary float rounding on the wire; dates as YYYY-MM-DD.

import (
	"github.com/google/uuid"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/report"
)

const dateLayout = "2006-01-02"

type transactionRequest struct {
	Date          string    `json:"date"`
	Amount        string    `json:"amount"`
	CategoryID    uuid.UUID `json:"category_id"`
	AccountID     uuid.UUID `json:"account_id"`
	Note          string    `json:"note"`
	OperationType string    `json:"operation_type"`
}

type transactionResponse struct {
	ID            uuid.UUID `json:"id"`
	Date          string    `json:"date"`
	Amount        string    `json:"amount"`
	CategoryID    uuid.UUID `json:"category_id"`
	Category      string    `json:"category,omitempty"`
	AccountID     uuid.UUID `json:"account_id"`
	Account       string    `json:"account,omitempty"`
	Note          string    `json:"note,omitempty"`
	OperationType string    `json:"operation_type"`
}

func toTransactionResponse(t budget.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Date:          t.Date.Format(dateLayout),
		Amount:        t.Amount.String(),
		CategoryID:    t.CategoryID,
		Category:      t.CategoryName,
		AccountID:     t.AccountID,
		Account:       t.AccountName,
		Note:          t.Note,
		OperationType: string(t.OperationType),
	}
}

func toTransactionResponses(list []budget.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type accountTypeRequest struct {
	Name string `json:"name"`
}

type accountTypeResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"display_order"`
}

func toAccountTypeResponse(at budget.AccountType) accountTypeResponse {
	return accountTypeResponse{ID: at.ID, Name: at.Name, DisplayOrder: at.DisplayOrder}
}

type orderRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type accountRequest struct {
	TypeID  uuid.UUID `json:"type_id"`
	Name    string    `json:"name"`
	Balance string    `json:"balance"`
}

type accountResponse struct {
	ID      uuid.UUID `json:"id"`
	TypeID  uuid.UUID `json:"type_id"`
	Name    string    `json:"name"`
	Balance string    `json:"balance"`
}

func toAccountResponse(a budget.Account) accountResponse {
	return accountResponse{ID: a.ID, TypeID: a.TypeID, Name: a.Name, Balance: a.Balance.String()}
}

type categoryRequest struct {
	Name          string `json:"name"`
	OperationType string `json:"operation_type"`
}

type categoryResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	OperationType string    `json:"operation_type"`
}

func toCategoryResponse(c budget.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, OperationType: string(c.OperationType)}
}

type navigationResponse struct {
	PreviousMonth int    `json:"previous_month"`
	PreviousYear  int    `json:"previous_year"`
	NextMonth     int    `json:"next_month"`
	NextYear      int    `json:"next_year"`
	ReturnURL     string `json:"return_url,omitempty"`
}

func toNavigationResponse(n budget.Navigation) navigationResponse {
	return navigationResponse{
		PreviousMonth: n.PreviousMonth,
		PreviousYear:  n.PreviousYear,
		NextMonth:     n.NextMonth,
		NextYear:      n.NextYear,
		ReturnURL:     n.ReturnURL,
	}
}

type dateGroupResponse struct {
	Date         string                `json:"date"`
	Transactions []transactionResponse `json:"transactions"`
}

type detailedReportResponse struct {
	Start  string              `json:"start"`
	End    string              `json:"end"`
	Groups []dateGroupResponse `json:"groups"`
	Nav    navigationResponse  `json:"nav"`
}

func toDetailedReportResponse(rep report.DetailedReport) detailedReportResponse {
	groups := make([]dateGroupResponse, 0, len(rep.Groups))
	for _, g := range rep.Groups {
		groups = append(groups, dateGroupResponse{
			Date:         g.Date.Format(dateLayout),
			Transactions: toTransactionResponses(g.Transactions),
		})
	}
	return detailedReportResponse{
		Start:  rep.Start.Format(dateLayout),
		End:    rep.End.Format(dateLayout),
		Groups: groups,
		Nav:    toNavigationResponse(rep.Nav),
	}
}

type weekBucketResponse struct {
	Week    int    `json:"week"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type weeklyReportResponse struct {
	Month int                  `json:"month"`
	Year  int                  `json:"year"`
	Weeks []weekBucketResponse `json:"weeks"`
	Nav   navigationResponse   `json:"nav"`
}

func toWeeklyReportResponse(rep report.WeeklyReport) weeklyReportResponse {
	weeks := make([]weekBucketResponse, 0, len(rep.Weeks))
	for _, w := range rep.Weeks {
		weeks = append(weeks, weekBucketResponse{
			Week:    w.Week,
			Start:   w.Start.Format(dateLayout),
			End:     w.End.Format(dateLayout),
			Income:  w.Income.String(),
			Expense: w.Expense.String(),
		})
	}
	return weeklyReportResponse{
		Month: int(rep.Reference.Month()),
		Year:  rep.Reference.Year(),
		Weeks: weeks,
		Nav:   toNavigationResponse(rep.Nav),
	}
}

type monthBucketResponse struct {
	Month   int    `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type monthlyReportResponse struct {
	Year   int                   `json:"year"`
	Months []monthBucketResponse `json:"months"`
}

func toMonthlyReportResponse(rep report.MonthlyReport) monthlyReportResponse {
	months := make([]monthBucketResponse, 0, len(rep.Months))
	for _, m := range rep.Months {
		months = append(months, monthBucketResponse{
			Month:   m.Month,
			Income:  m.Income.String(),
			Expense: m.Expense.String(),
		})
	}
	return monthlyReportResponse{Year: rep.Year, Months: months}
}

type calendarEventResponse struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Color string `json:"color,omitempty"`
}
