// Package httpapi wires the HTTP surface of the budgeting service.
// It keeps handlers thin, delegating business rules to the service layer.
package httpapi

import (
	"log/slog"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/account"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/category"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/report"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/service/transaction"
)

// Server wires handlers and middleware using Chi.
// It composes read (repo) and write (writer) dependencies through services.
type Server struct {
	txSvc       transaction.Service
	reportSvc   report.Service
	accountSvc  account.Service
	categorySvc category.Service
	txReader    transaction.Repo
	log         *slog.Logger
	rt          *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
// The logger is used by basic request/response logging and panic recovery.
func New(trepo transaction.Repo, twriter transaction.Writer, rrepo report.Repo, arepo account.Repo, awriter account.Writer, crepo category.Repo, cwriter category.Writer, auth AuthConfig, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	r.Use(authenticate(auth))

	s := &Server{
		txSvc:       transaction.New(trepo, twriter),
		reportSvc:   report.New(rrepo),
		accountSvc:  account.New(arepo, awriter),
		categorySvc: category.New(crepo, cwriter),
		txReader:    trepo,
		log:         logger,
		rt:          r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints and attaches any per-route middleware.
func (s *Server) routes() {
	// Transactions (v1)
	s.rt.With(s.validateTransaction()).Post("/v1/transactions", s.postTransaction)
	s.rt.Get("/v1/transactions", s.listTransactionsByDate)
	s.rt.Get("/v1/transactions/{id}", s.getTransaction)
	s.rt.With(s.validateTransaction()).Put("/v1/transactions/{id}", s.putTransaction)
	s.rt.Delete("/v1/transactions/{id}", s.deleteTransaction)
	// Reports (v1)
	s.rt.Get("/v1/reports/detailed", s.detailedReport)
	s.rt.Get("/v1/reports/weekly", s.weeklyReport)
	s.rt.Get("/v1/reports/monthly", s.monthlyReport)
	s.rt.Get("/v1/reports/calendar", s.calendarEvents)
	// Accounts (v1)
	s.rt.Post("/v1/accounts", s.postAccount)
	s.rt.Get("/v1/accounts", s.listAccounts)
	s.rt.Get("/v1/accounts/{id}", s.getAccount)
	s.rt.Put("/v1/accounts/{id}", s.putAccount)
	s.rt.Delete("/v1/accounts/{id}", s.deleteAccount)
	// Account types (v1)
	s.rt.Post("/v1/account-types", s.postAccountType)
	s.rt.Get("/v1/account-types", s.listAccountTypes)
	s.rt.Put("/v1/account-types/{id}", s.putAccountType)
	s.rt.Delete("/v1/account-types/{id}", s.deleteAccountType)
	s.rt.Post("/v1/account-types/order", s.reorderAccountTypes)
	// Categories (v1)
	s.rt.Post("/v1/categories", s.postCategory)
	s.rt.Get("/v1/categories", s.listCategories)
	s.rt.Get("/v1/categories/{id}", s.getCategory)
	s.rt.Put("/v1/categories/{id}", s.putCategory)
	s.rt.Delete("/v1/categories/{id}", s.deleteCategory)
	// Health and metrics (unversioned)
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())
}
