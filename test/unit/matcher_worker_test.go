package unit

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/jobs"
)

type matcherMock struct {
	unmatched []int64
	applied   []int64
	results   map[int64]error
}

func (m *matcherMock) UnmatchedIDs(_ context.Context, limit int32) ([]int64, error) {
	if int32(len(m.unmatched)) > limit {
		return m.unmatched[:limit], nil
	}
	return m.unmatched, nil
}

func (m *matcherMock) Apply(_ context.Context, transactionID int64) (*remittance.ApplyResult, error) {
	m.applied = append(m.applied, transactionID)
	if err, ok := m.results[transactionID]; ok && err != nil {
		return nil, err
	}
	return &remittance.ApplyResult{
		Transaction: &remittance.Transaction{ID: transactionID, MatchStatus: remittance.StatusMatched},
	}, nil
}

func TestWorkerAppliesEveryUnmatchedTransaction(t *testing.T) {
	m := &matcherMock{unmatched: []int64{1, 2, 3}}
	w := jobs.NewWorker(m, slog.Default())

	if err := w.RunOnce(context.Background(), 10); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(m.applied) != 3 {
		t.Fatalf("expected 3 applies, got %v", m.applied)
	}
}

func TestWorkerSkipsConcurrentlyMatchedRows(t *testing.T) {
	m := &matcherMock{
		unmatched: []int64{1, 2, 3},
		results: map[int64]error{
			2: remittance.ErrAlreadyMatched,
			3: remittance.ErrTransactionNotFound,
		},
	}
	w := jobs.NewWorker(m, slog.Default())

	if err := w.RunOnce(context.Background(), 10); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(m.applied) != 3 {
		t.Fatalf("expected all rows attempted, got %v", m.applied)
	}
}

func TestWorkerHonorsBatchSize(t *testing.T) {
	m := &matcherMock{unmatched: []int64{1, 2, 3, 4, 5}}
	w := jobs.NewWorker(m, slog.Default())

	if err := w.RunOnce(context.Background(), 2); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(m.applied) != 2 {
		t.Fatalf("expected 2 applies, got %v", m.applied)
	}
}
