package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	dealerpostgres "github.com/Apurer/cement-dealer-portal/internal/domains/dealers/adapters/persistence/postgres"
	platformobservability "github.com/Apurer/cement-dealer-portal/internal/platform/observability"
	platformpostgres "github.com/Apurer/cement-dealer-portal/internal/platform/postgres"
)

// session-purger deletes expired bearer sessions and OTP challenges. Run it from cron.
func main() {
	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := platformobservability.NewLogger(os.Stdout, platformobservability.ParseLevel(os.Getenv("LOG_LEVEL")))
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, os.Getenv("POSTGRES_DSN"), logger)
	defer cleanup()
	if db == nil {
		logger.Error("POSTGRES_DSN not set or connection failed; cannot purge sessions")
		os.Exit(1)
	}

	sessions, err := dealerpostgres.NewSessionStore(db).PurgeExpired(ctx)
	if err != nil {
		logger.Error("failed to purge sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}
	challenges, err := dealerpostgres.NewOTPStore(db).PurgeExpired(ctx)
	if err != nil {
		logger.Error("failed to purge otp challenges", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("purge completed", slog.Int64("sessions", sessions), slog.Int64("otp_challenges", challenges))
}
