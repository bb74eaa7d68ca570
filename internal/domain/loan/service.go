package loan

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrRepaymentNotFound = errors.New("repayment not found")
	ErrInvalid           = errors.New("invalid loan input")
	ErrNothingToReverse  = errors.New("repayment has no recorded payment")
	ErrHasAllocations    = errors.New("repayment settled by remittance; reverse the transaction instead")
)

type Service struct {
	repo       Repository
	annualRate decimal.Decimal
	now        func() time.Time
}

func NewService(repo Repository, annualRate decimal.Decimal) *Service {
	return &Service{
		repo:       repo,
		annualRate: annualRate,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create books a loan directly, outside the disbursement flow. The
// schedule is generated alongside.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	if in.CustomerID == 0 || in.ProductID == 0 || in.TenorMonths < 1 || !in.PrincipalAmount.IsPositive() {
		return nil, ErrInvalid
	}

	start := s.now()
	if in.StartDate != nil {
		start = *in.StartDate
	}
	total := TotalPayable(in.PrincipalAmount, s.annualRate, in.TenorMonths)
	schedule := BuildSchedule(total, in.TenorMonths, start)
	return s.repo.Create(ctx, in, s.annualRate, total, start, schedule)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	l, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) HasActiveLoan(ctx context.Context, customerID int64) (bool, error) {
	return s.repo.HasActiveLoan(ctx, customerID)
}

func (s *Service) ListRepayments(ctx context.Context, loanID int64) ([]Repayment, error) {
	if _, err := s.Get(ctx, loanID); err != nil {
		return nil, err
	}
	return s.repo.ListRepayments(ctx, loanID)
}

func (s *Service) GetRepayment(ctx context.Context, id int64) (*Repayment, error) {
	rep, err := s.repo.GetRepayment(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRepaymentNotFound
	}
	return rep, err
}

// ReverseRepayment undoes a manually recorded payment. Repayments that
// were settled by remittance allocation must be reversed through the
// transaction, which replays the stored allocations.
func (s *Service) ReverseRepayment(ctx context.Context, id int64) (*Repayment, error) {
	rep, err := s.GetRepayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rep.IsPaid && rep.AmountPaid.IsZero() {
		return nil, ErrNothingToReverse
	}

	n, err := s.repo.CountAllocations(ctx, id)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrHasAllocations
	}

	return s.repo.ClearRepayment(ctx, id)
}
