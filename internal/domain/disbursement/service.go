package disbursement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("disbursement not found")
	ErrNotApproved       = errors.New("application not approved")
	ErrAlreadyDisbursed  = errors.New("application already disbursed")
	ErrMissingAmount     = errors.New("application has no approved amount")
	ErrDuplicateRef      = errors.New("disbursement reference already used")
	ErrMethodUnsupported = errors.New("unsupported disbursement method")
)

const defaultMethod = "WALLET"

type ApplicationGetter interface {
	Get(ctx context.Context, id int64) (*application.Entity, error)
}

type WalletProvider interface {
	EnsureWallet(ctx context.Context, customerID int64) (*customer.Entity, error)
}

type Service struct {
	repo       Repository
	apps       ApplicationGetter
	wallets    WalletProvider
	annualRate decimal.Decimal
	now        func() time.Time
}

func NewService(repo Repository, apps ApplicationGetter, wallets WalletProvider, annualRate decimal.Decimal) *Service {
	return &Service{
		repo:       repo,
		apps:       apps,
		wallets:    wallets,
		annualRate: annualRate,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Disburse pays out an approved application: one disbursement record,
// wallet credit, loan plus schedule, application marked DISBURSED, all
// in a single database transaction.
func (s *Service) Disburse(ctx context.Context, applicationID int64, in Input, actorID int64) (*Entity, *loan.Entity, error) {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	if app.Status == application.StatusDisbursed {
		return nil, nil, ErrAlreadyDisbursed
	}
	if app.Status != application.StatusApproved {
		return nil, nil, ErrNotApproved
	}
	if app.ApprovedAmount == nil || !app.ApprovedAmount.IsPositive() {
		return nil, nil, ErrMissingAmount
	}

	if _, err := s.wallets.EnsureWallet(ctx, app.CustomerID); err != nil {
		return nil, nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(in.Method))
	if method == "" {
		method = defaultMethod
	}

	reference := strings.TrimSpace(in.Reference)
	if reference == "" {
		reference = NewReference()
	}

	start := s.now()
	total := loan.TotalPayable(*app.ApprovedAmount, s.annualRate, app.TenorMonths)

	var actor *int64
	if actorID != 0 {
		actor = &actorID
	}

	return s.repo.Disburse(ctx, Params{
		ApplicationID: app.ID,
		CustomerID:    app.CustomerID,
		ProductID:     app.ProductID,
		Amount:        *app.ApprovedAmount,
		Reference:     reference,
		Method:        method,
		DisbursedBy:   actor,
		InterestRate:  s.annualRate,
		TotalPayable:  total,
		TenorMonths:   app.TenorMonths,
		StartDate:     start,
		Schedule:      loan.BuildSchedule(total, app.TenorMonths, start),
	})
}

func (s *Service) GetByApplication(ctx context.Context, applicationID int64) (*Entity, error) {
	d, err := s.repo.GetByApplication(ctx, applicationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// NewReference generates a DISB-<12 hex> payout reference.
func NewReference() string {
	return fmt.Sprintf("DISB-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
