package loanlink

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Entity struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	ProductID      int64      `json:"product_id"`
	Token          string     `json:"token"`
	IsActive       bool       `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type CreateInput struct {
	OrganizationID int64      `json:"organization_id"`
	ProductID      int64      `json:"product_id"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type ListFilter struct {
	OrganizationID int64
	ProductID      int64
}

// PublicView is what the unauthenticated application form sees when it
// resolves a link token.
type PublicView struct {
	Token              string           `json:"token"`
	OrganizationID     int64            `json:"organization_id"`
	OrganizationName   string           `json:"organization_name"`
	ProductID          int64            `json:"product_id"`
	ProductName        string           `json:"product_name"`
	InterestRate       decimal.Decimal  `json:"interest_rate"`
	MaxTenorMonths     int32            `json:"max_tenor_months"`
	MinAmount          *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount          *decimal.Decimal `json:"max_amount,omitempty"`
	RepaymentFrequency string           `json:"repayment_frequency"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput, token string) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	GetByToken(ctx context.Context, token string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	SetActive(ctx context.Context, id int64, active bool) (*Entity, error)
	ResolvePublic(ctx context.Context, token string) (*PublicView, error)
}
