package disbursement

import (
	"context"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/shopspring/decimal"
)

type Entity struct {
	ID            int64           `json:"id"`
	ApplicationID int64           `json:"application_id"`
	LoanID        *int64          `json:"loan_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	Method        string          `json:"method"`
	DisbursedBy   *int64          `json:"disbursed_by,omitempty"`
	DisbursedAt   time.Time       `json:"disbursed_at"`
}

type Input struct {
	Reference string `json:"reference"`
	Method    string `json:"method"`
}

// Params carries everything the atomic disbursement transaction writes:
// the disbursement row, the loan, its schedule, the wallet credit and
// the application status flip.
type Params struct {
	ApplicationID int64
	CustomerID    int64
	ProductID     int64
	Amount        decimal.Decimal
	Reference     string
	Method        string
	DisbursedBy   *int64
	InterestRate  decimal.Decimal
	TotalPayable  decimal.Decimal
	TenorMonths   int32
	StartDate     time.Time
	Schedule      []loan.ScheduleLine
}

type Repository interface {
	Disburse(ctx context.Context, p Params) (*Entity, *loan.Entity, error)
	GetByApplication(ctx context.Context, applicationID int64) (*Entity, error)
}
