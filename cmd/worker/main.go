package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/config"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/db"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/jobs"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/observability"
	postgresrepo "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	remitService := remittance.NewService(
		postgresrepo.NewRemittanceRepository(pool),
		postgresrepo.NewOrganizationRepository(pool),
		nil,
		cfg.AccountNumberPrefix,
	)
	worker := jobs.NewWorker(remitService, logger)

	interval := cfg.WorkerPollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("matcher worker started", "interval", interval.String(), "batch_size", cfg.WorkerBatchSize)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("matcher worker stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := worker.RunOnce(runCtx, cfg.WorkerBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("matcher run failed", "err", err)
			}
		}
	}
}
