package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kretinoh/Manejador-de-presupuestos/internal/budget"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/config"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/httpapi"
	"github.com/kretinoh/Manejador-de-presupuestos/internal/storage/memory"
	pgstore "github.com/kretinoh/Manejador-de-presupuestos/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLogger(cfg)
	slog.SetDefault(logger)

	auth := httpapi.AuthConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience}

	var srvMux http.Handler
	var closeFn func()

	if cfg.DatabaseURL != "" {
		// Use Postgres store when DATABASE_URL is provided
		if err := pgstore.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		pg, err := pgstore.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		// Optional dev seed for compose/local
		if cfg.DevSeed {
			user, accs, cats, err := pg.SeedDev(ctx)
			if err != nil {
				logger.Error("dev seed failed", "err", err)
			} else {
				logDevSeed(logger, "postgres", user, accs, cats)
				printDevSeedBanner(user, accs, cats)
			}
		}
		srvMux = httpapi.New(pg, pg, pg, pg, pg, pg, pg, auth, logger).Handler()
		logger.Info("storage backend: postgres")
	} else {
		// Default to in-memory store with a small dev seed
		store := memory.New()
		user, accs, cats := seedMemory(store)
		logDevSeed(logger, "memory", user, accs, cats)
		printDevSeedBanner(user, accs, cats)
		srvMux = httpapi.New(store, store, store, store, store, store, store, auth, logger).Handler()
		logger.Info("storage backend: memory")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srvMux,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("budget service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// seedMemory loads one user with an account type, two accounts and a few
// categories so the API is usable out of the box.
func seedMemory(store *memory.Store) (budget.User, []budget.Account, []budget.Category) {
	user := budget.User{ID: uuid.New()}
	store.SeedUser(user)
	cashType := budget.AccountType{ID: uuid.New(), UserID: user.ID, Name: "Cash", DisplayOrder: 1}
	store.SeedAccountType(cashType)
	accs := []budget.Account{
		{ID: uuid.New(), UserID: user.ID, TypeID: cashType.ID, Name: "Wallet"},
		{ID: uuid.New(), UserID: user.ID, TypeID: cashType.ID, Name: "Checking"},
	}
	for _, a := range accs {
		store.SeedAccount(a)
	}
	cats := []budget.Category{
		{ID: uuid.New(), UserID: user.ID, Name: "Salary", OperationType: budget.OperationIncome},
		{ID: uuid.New(), UserID: user.ID, Name: "Groceries", OperationType: budget.OperationExpense},
		{ID: uuid.New(), UserID: user.ID, Name: "Rent", OperationType: budget.OperationExpense},
	}
	for _, c := range cats {
		store.SeedCategory(c)
	}
	return user, accs, cats
}

// logDevSeed emits structured logs with useful IDs
func logDevSeed(l *slog.Logger, backend string, user budget.User, accs []budget.Account, cats []budget.Category) {
	ids := map[string]string{}
	for _, a := range accs {
		ids["account_"+strings.ToLower(a.Name)] = a.ID.String()
	}
	for _, c := range cats {
		ids["category_"+strings.ToLower(c.Name)] = c.ID.String()
	}
	l.Info("DEV seed ("+backend+")", "user_id", user.ID.String(), "ids", ids)
}

// printDevSeedBanner prints a simple banner to stdout for easy copy/paste of IDs
func printDevSeedBanner(user budget.User, accs []budget.Account, cats []budget.Category) {
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("user_id: %s\n", user.ID.String())
	for _, a := range accs {
		fmt.Printf("account %s: %s\n", a.Name, a.ID.String())
	}
	for _, c := range cats {
		fmt.Printf("category %s (%s): %s\n", c.Name, c.OperationType, c.ID.String())
	}
	fmt.Println("==================================================")
}

// parseLogLevel maps env values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch s {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "WARNING", "warn", "warning":
		return slog.LevelWarn
	case "ERROR", "ERR", "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	if strings.ToLower(strings.TrimSpace(cfg.LogFormat)) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
