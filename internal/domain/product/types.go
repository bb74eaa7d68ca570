package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Entity struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description,omitempty"`
	InterestRate       decimal.Decimal  `json:"interest_rate"`
	MaxTenorMonths     int32            `json:"max_tenor_months"`
	MinAmount          *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount          *decimal.Decimal `json:"max_amount,omitempty"`
	RepaymentFrequency string           `json:"repayment_frequency"`
	IsActive           bool             `json:"is_active"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type CreateInput struct {
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	InterestRate       decimal.Decimal  `json:"interest_rate"`
	MaxTenorMonths     int32            `json:"max_tenor_months"`
	MinAmount          *decimal.Decimal `json:"min_amount"`
	MaxAmount          *decimal.Decimal `json:"max_amount"`
	RepaymentFrequency string           `json:"repayment_frequency"`
}

type UpdateInput struct {
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	InterestRate       *decimal.Decimal `json:"interest_rate"`
	MaxTenorMonths     *int32           `json:"max_tenor_months"`
	MinAmount          *decimal.Decimal `json:"min_amount"`
	MaxAmount          *decimal.Decimal `json:"max_amount"`
	RepaymentFrequency *string          `json:"repayment_frequency"`
	IsActive           *bool            `json:"is_active"`
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	List(ctx context.Context) ([]Entity, error)
	Update(ctx context.Context, id int64, in UpdateInput) (*Entity, error)
}
