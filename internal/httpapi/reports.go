package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// periodQuery reads optional month/year query params. Zero values stand for
// "absent" and resolve to the current month downstream.
func periodQuery(r *http.Request) (month, year int) {
	q := r.URL.Query()
	month, _ = strconv.Atoi(q.Get("month"))
	year, _ = strconv.Atoi(q.Get("year"))
	return month, year
}

func (s *Server) detailedReport(w http.ResponseWriter, r *http.Request) {
	month, year := periodQuery(r)
	returnURL := r.URL.Query().Get("return_url")
	if raw := r.URL.Query().Get("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			badRequest(w, "invalid account_id")
			return
		}
		rep, err := s.reportSvc.DetailedByAccount(r.Context(), userID(r), accountID, month, year, returnURL)
		if err != nil {
			respondError(w, err)
			return
		}
		toJSON(w, http.StatusOK, toDetailedReportResponse(rep))
		return
	}
	rep, err := s.reportSvc.Detailed(r.Context(), userID(r), month, year, returnURL)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toDetailedReportResponse(rep))
}

func (s *Server) weeklyReport(w http.ResponseWriter, r *http.Request) {
	month, year := periodQuery(r)
	rep, err := s.reportSvc.Weekly(r.Context(), userID(r), month, year, r.URL.Query().Get("return_url"))
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toWeeklyReportResponse(rep))
}

func (s *Server) monthlyReport(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	rep, err := s.reportSvc.Monthly(r.Context(), userID(r), year)
	if err != nil {
		respondError(w, err)
		return
	}
	toJSON(w, http.StatusOK, toMonthlyReportResponse(rep))
}

// calendarEvents serves the calendar feed for a [start, end] date range.
func (s *Server) calendarEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse(dateLayout, q.Get("start"))
	if err != nil {
		badRequest(w, "invalid start, want YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, q.Get("end"))
	if err != nil {
		badRequest(w, "invalid end, want YYYY-MM-DD")
		return
	}
	events, err := s.reportSvc.CalendarEvents(r.Context(), userID(r), start, end)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]calendarEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, calendarEventResponse{Title: ev.Title, Start: ev.Start, End: ev.End, Color: ev.Color})
	}
	toJSON(w, http.StatusOK, out)
}
