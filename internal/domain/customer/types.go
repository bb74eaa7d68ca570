package customer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Entity struct {
	ID               int64            `json:"id"`
	OrganizationID   *int64           `json:"organization_id,omitempty"`
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Email            string           `json:"email,omitempty"`
	PhoneNumber      string           `json:"phone_number,omitempty"`
	BVN              string           `json:"bvn,omitempty"`
	StaffID          string           `json:"staff_id,omitempty"`
	DateOfBirth      *time.Time       `json:"date_of_birth,omitempty"`
	EmployerName     string           `json:"employer_name,omitempty"`
	NetMonthlyPay    *decimal.Decimal `json:"net_monthly_pay,omitempty"`
	BankName         string           `json:"bank_name,omitempty"`
	BankAccount      string           `json:"bank_account,omitempty"`
	NUNAccountNumber string           `json:"nun_account_number,omitempty"`
	AccountBalance   decimal.Decimal  `json:"account_balance"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type CreateInput struct {
	OrganizationID *int64           `json:"organization_id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	PhoneNumber    string           `json:"phone_number"`
	BVN            string           `json:"bvn"`
	StaffID        string           `json:"staff_id"`
	DateOfBirth    *time.Time       `json:"date_of_birth"`
	EmployerName   string           `json:"employer_name"`
	NetMonthlyPay  *decimal.Decimal `json:"net_monthly_pay"`
	BankName       string           `json:"bank_name"`
	BankAccount    string           `json:"bank_account"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	List(ctx context.Context, organizationID int64) ([]Entity, error)
	GetByBVNInOrg(ctx context.Context, organizationID int64, bvn string) (*Entity, error)
	GetByStaffIDInOrg(ctx context.Context, organizationID int64, staffID string) (*Entity, error)
	UpdateEmployment(ctx context.Context, id int64, in CreateInput) (*Entity, error)
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)
	SetAccountNumber(ctx context.Context, id int64, accountNumber string) (*Entity, error)
}
