// Package cli provides common initialization for the finanz command.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/auth"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/cache"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/config"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/dashboard"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/finance"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/prefs"
	"github.com/AdriBusse/FinanZApp2025-sub000/internal/secure"
)

// App is the fully wired application.
type App struct {
	Config    *config.Config
	Logger    *applog.Logger
	Prefs     *prefs.Store
	Tokens    *secure.TokenStore
	Cache     *cache.Store
	Auth      *auth.Store
	Client    *graphql.Client
	Savings   *finance.Savings
	Expenses  *finance.Expenses
	Overview  *finance.Overview
	Dashboard *dashboard.Store
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging at the configured level and sets
// it as the process default.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	switch level {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	default:
		cfg.Level = slog.LevelInfo
	}
	cfg.Handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitApp wires every store and the GraphQL client. The auth store and the
// client reference each other (the client's link chain needs the token source
// and the invalidation callback), so the client is attached after both exist.
func InitApp(cfg *config.Config, logger *applog.Logger) (*App, error) {
	preferences, err := prefs.Open(cfg.PrefsDBPath, logger)
	if err != nil {
		return nil, err
	}

	tokens, err := secure.New(cfg.SecureDir, trustedGate{}, logger)
	if err != nil {
		preferences.Close()
		return nil, err
	}

	queryCache := cache.New(logger, finance.CachePolicies())
	authStore := auth.New(tokens, preferences, queryCache, logger)

	client := graphql.New(graphql.Config{
		Endpoint:   cfg.APIURL,
		Timeout:    cfg.RequestTimeout,
		Token:      authStore.Token,
		Invalidate: authStore.Invalidate,
		Logger:     logger,
	})
	authStore.AttachClient(client)

	savings := finance.NewSavings(client, queryCache, logger)
	expenses := finance.NewExpenses(client, queryCache, logger)
	overview := finance.NewOverview(client, queryCache, savings, expenses, logger)
	board := dashboard.New(preferences, cfg.PersistDebounce, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Prefs:     preferences,
		Tokens:    tokens,
		Cache:     queryCache,
		Auth:      authStore,
		Client:    client,
		Savings:   savings,
		Expenses:  expenses,
		Overview:  overview,
		Dashboard: board,
	}, nil
}

// Close flushes pending dashboard writes and releases resources.
func (a *App) Close(ctx context.Context) {
	a.Dashboard.Flush(ctx)
	if err := a.Prefs.Close(); err != nil {
		a.Logger.Warn("closing preference store failed", applog.FieldError, err.Error())
	}
}

// trustedGate treats possession of the local account as sufficient proof.
// Desktop machines have no biometric sensor to prompt.
type trustedGate struct{}

func (trustedGate) Supported() bool { return true }

func (trustedGate) Authenticate(ctx context.Context, reason string) error { return nil }

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
