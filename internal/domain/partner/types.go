package partner

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Invite struct {
	ID            int64      `json:"id"`
	PartnerUserID int64      `json:"partner_user_id"`
	TokenHash     string     `json:"-"`
	ExpiresAt     time.Time  `json:"expires_at"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type InviteInput struct {
	OrganizationID int64  `json:"organization_id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
}

// InviteResult carries the raw token back to the caller exactly once;
// only its hash is stored.
type InviteResult struct {
	User      *User     `json:"user"`
	InviteURL string    `json:"invite_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type InviteDetails struct {
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	OrganizationName string `json:"organization_name"`
}

// StaffLoan is one row of the partner's staff-loans view.
type StaffLoan struct {
	LoanID       int64           `json:"loan_id"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	StaffID      string          `json:"staff_id,omitempty"`
	Principal    decimal.Decimal `json:"principal_amount"`
	TotalPayable decimal.Decimal `json:"total_payable"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	NextDueDate  *time.Time      `json:"next_due_date,omitempty"`
	Status       string          `json:"status"`
}

type MonthlyDueLine struct {
	LoanID            int64           `json:"loan_id"`
	CustomerName      string          `json:"customer_name"`
	StaffID           string          `json:"staff_id,omitempty"`
	InstallmentNumber int32           `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	AmountDue         decimal.Decimal `json:"amount_due"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	Outstanding       decimal.Decimal `json:"outstanding"`
}

type MonthlyDue struct {
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	TotalDue     decimal.Decimal  `json:"total_due"`
	Installments []MonthlyDueLine `json:"installments"`
}

type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, organizationID int64, fullName, email, role string) (*User, error)
	UpdateUserName(ctx context.Context, id int64, fullName string) (*User, error)
	ListUsers(ctx context.Context, organizationID int64) ([]User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	ActivateWithPassword(ctx context.Context, id int64, hashedPassword string) (*User, error)

	CreateInvite(ctx context.Context, partnerUserID int64, tokenHash string, expiresAt time.Time) (*Invite, error)
	GetInviteByHash(ctx context.Context, tokenHash string) (*Invite, error)
	MarkInviteUsed(ctx context.Context, id int64, usedAt time.Time) error

	StaffLoans(ctx context.Context, organizationID int64) ([]StaffLoan, error)
	MonthlyDue(ctx context.Context, organizationID int64, year, month int) (*MonthlyDue, error)
}
