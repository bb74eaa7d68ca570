package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending     = "PENDING"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusDisbursed   = "DISBURSED"
)

type Entity struct {
	ID              int64            `json:"id"`
	CustomerID      int64            `json:"customer_id"`
	ProductID       int64            `json:"product_id"`
	LinkID          *int64           `json:"link_id,omitempty"`
	RequestedAmount decimal.Decimal  `json:"requested_amount"`
	ApprovedAmount  *decimal.Decimal `json:"approved_amount,omitempty"`
	TenorMonths     int32            `json:"tenor_months"`
	Purpose         string           `json:"purpose,omitempty"`
	Status          string           `json:"status"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	DecidedAt       *time.Time       `json:"decided_at,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type CreateInput struct {
	CustomerID      int64           `json:"customer_id"`
	ProductID       int64           `json:"product_id"`
	LinkID          *int64          `json:"link_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TenorMonths     int32           `json:"tenor_months"`
	Purpose         string          `json:"purpose"`
}

// PublicInput is the unauthenticated application form: applicant
// details plus the loan request.
type PublicInput struct {
	FirstName       string           `json:"first_name"`
	LastName        string           `json:"last_name"`
	Email           string           `json:"email"`
	PhoneNumber     string           `json:"phone_number"`
	BVN             string           `json:"bvn"`
	StaffID         string           `json:"staff_id"`
	DateOfBirth     *time.Time       `json:"date_of_birth"`
	EmployerName    string           `json:"employer_name"`
	NetMonthlyPay   *decimal.Decimal `json:"net_monthly_pay"`
	BankName        string           `json:"bank_name"`
	BankAccount     string           `json:"bank_account"`
	RequestedAmount decimal.Decimal  `json:"requested_amount"`
	TenorMonths     int32            `json:"tenor_months"`
	Purpose         string           `json:"purpose"`
}

type StatusInput struct {
	Status         string           `json:"status"`
	ApprovedAmount *decimal.Decimal `json:"approved_amount"`
}

type ListFilter struct {
	Status         string
	OrganizationID int64
	Limit          int32
	Offset         int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Entity, error)
	UpdateStatus(ctx context.Context, id int64, status string, approvedAmount *decimal.Decimal, decidedAt *time.Time) (*Entity, error)
	HasOpenApplication(ctx context.Context, customerID int64) (bool, error)
	HasDisbursementEvidence(ctx context.Context, applicationID int64) (bool, error)
}
