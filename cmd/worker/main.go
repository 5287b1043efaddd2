package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"rainbowrise/internal/adapter/repo"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/ledger"
)

const reconcileTimeout = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	store := repo.NewStore(infra.NewSQLRunner(pool, logger))
	svc := ledger.NewService(store.Ledger, logger)

	c := cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(jobWrappers(logger)...))
	_, err = c.AddFunc(cfg.ReconcileSchedule, func() {
		reconcile(ctx, svc, cfg.ReconcileRepair, logger)
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.ReconcileSchedule).Msg("worker: invalid reconcile schedule")
	}

	logger.Info().Str("schedule", cfg.ReconcileSchedule).Bool("repair", cfg.ReconcileRepair).Msg("worker started")
	reconcile(ctx, svc, cfg.ReconcileRepair, logger)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("worker stopped")
}

func reconcile(ctx context.Context, svc *ledger.Service, repair bool, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	started := time.Now()
	report, err := svc.Reconcile(ctx, repair)
	if err != nil {
		logger.Error().Err(err).Msg("reconcile failed")
		return
	}
	logger.Info().
		Int("drifts", len(report.Drifts)).
		Int("repaired", len(report.Repaired)).
		Dur("took", time.Since(started)).
		Msg("reconcile finished")
}

// jobWrappers keeps a slow reconcile from overlapping the next tick.
func jobWrappers(logger zerolog.Logger) []cron.JobWrapper {
	return []cron.JobWrapper{
		cron.Recover(cronLogger{logger}),
		cron.SkipIfStillRunning(cronLogger{logger}),
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
