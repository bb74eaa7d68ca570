package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
)

type Matcher interface {
	UnmatchedIDs(ctx context.Context, limit int32) ([]int64, error)
	Apply(ctx context.Context, transactionID int64) (*remittance.ApplyResult, error)
}

// Worker sweeps UNMATCHED transactions and retries allocation. A
// remittance that arrived before its organization had unpaid
// installments gets picked up here once a loan is disbursed.
type Worker struct {
	matcher Matcher
	logger  *slog.Logger
}

func NewWorker(matcher Matcher, logger *slog.Logger) *Worker {
	return &Worker{matcher: matcher, logger: logger}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	ids, err := w.matcher.UnmatchedIDs(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, id := range ids {
		result, err := w.matcher.Apply(ctx, id)
		if err != nil {
			// Another applier won the row; move on.
			if errors.Is(err, remittance.ErrAlreadyMatched) {
				continue
			}
			if errors.Is(err, remittance.ErrTransactionNotFound) {
				continue
			}
			return err
		}
		if result.Transaction.MatchStatus == remittance.StatusMatched {
			w.logger.Info("remittance matched",
				"transaction_id", id,
				"allocations", len(result.Allocations),
			)
		}
	}
	return nil
}
