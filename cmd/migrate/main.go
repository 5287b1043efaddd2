// Command migrate applies the embedded schema migrations to DATABASE_URL.
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"rainbowrise/internal/db"
	"rainbowrise/internal/infra"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "migrate").Logger()
	if err := cfg.RequireDatabase(); err != nil {
		logger.Fatal().Err(err).Msg("migrate: database required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: open database")
	}
	defer conn.Close()
	if err := conn.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("migrate: ping database")
	}

	applied, err := db.Apply(ctx, conn, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: apply failed")
	}
	logger.Info().Strs("applied", applied).Msg("migrations up to date")
}
