package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPendingDisbursement = "PENDING_DISBURSEMENT"
	StatusActive              = "ACTIVE"
	StatusClosed              = "CLOSED"
	StatusDefaulted           = "DEFAULTED"
)

type Entity struct {
	ID              int64           `json:"id"`
	ApplicationID   *int64          `json:"application_id,omitempty"`
	CustomerID      int64           `json:"customer_id"`
	ProductID       int64           `json:"product_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	TotalPayable    decimal.Decimal `json:"total_payable"`
	TenorMonths     int32           `json:"tenor_months"`
	StartDate       time.Time       `json:"start_date"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Repayment struct {
	ID                int64           `json:"id"`
	LoanID            int64           `json:"loan_id"`
	InstallmentNumber int32           `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	IsPaid            bool            `json:"is_paid"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
}

type ScheduleLine struct {
	InstallmentNumber int32
	DueDate           time.Time
	AmountDue         decimal.Decimal
}

type CreateInput struct {
	ApplicationID   *int64          `json:"application_id"`
	CustomerID      int64           `json:"customer_id"`
	ProductID       int64           `json:"product_id"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	TenorMonths     int32           `json:"tenor_months"`
	StartDate       *time.Time      `json:"start_date"`
}

type ListFilter struct {
	Status         string
	OrganizationID int64
	Limit          int32
	Offset         int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput, interestRate, totalPayable decimal.Decimal, startDate time.Time, schedule []ScheduleLine) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	HasActiveLoan(ctx context.Context, customerID int64) (bool, error)
	ListRepayments(ctx context.Context, loanID int64) ([]Repayment, error)
	GetRepayment(ctx context.Context, id int64) (*Repayment, error)
	CountAllocations(ctx context.Context, repaymentID int64) (int64, error)
	ClearRepayment(ctx context.Context, repaymentID int64) (*Repayment, error)
}
