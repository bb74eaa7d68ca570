package remittance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusUnmatched = "UNMATCHED"
	StatusMatched   = "MATCHED"
	StatusDisputed  = "DISPUTED"
)

type Account struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	AccountNumber  string    `json:"account_number"`
	AccountName    string    `json:"account_name"`
	BankName       string    `json:"bank_name"`
	Provider       string    `json:"provider"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

type Transaction struct {
	ID             int64           `json:"id"`
	OrganizationID int64           `json:"organization_id"`
	AccountID      *int64          `json:"account_id,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference"`
	Narration      string          `json:"narration,omitempty"`
	MatchStatus    string          `json:"match_status"`
	ReceivedAt     time.Time       `json:"received_at"`
	MatchedAt      *time.Time      `json:"matched_at,omitempty"`
}

// TransactionView adds the derived allocation totals to a transaction
// row for listings.
type TransactionView struct {
	Transaction
	AppliedAmount     decimal.Decimal `json:"applied_amount"`
	UnallocatedAmount decimal.Decimal `json:"unallocated_amount"`
}

type Allocation struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transaction_id"`
	RepaymentID   int64           `json:"repayment_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	CreatedAt     time.Time       `json:"created_at"`
}

type IngestInput struct {
	OrganizationID int64           `json:"organization_id"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference"`
	Narration      string          `json:"narration"`
}

type CreateAccountInput struct {
	OrganizationID int64 `json:"organization_id"`
	ForceNew       bool  `json:"force_new"`
}

// Summary is derived entirely by summation; there are no mutable
// counters to drift. remitted == applied + unallocated holds by
// construction.
type Summary struct {
	OrganizationID     int64           `json:"organization_id"`
	TotalRemitted      decimal.Decimal `json:"total_remitted"`
	TotalApplied       decimal.Decimal `json:"total_applied"`
	UnallocatedBalance decimal.Decimal `json:"unallocated_balance"`
	TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	TransactionCount   int64           `json:"transaction_count"`
	MatchedCount       int64           `json:"matched_count"`
	UnmatchedCount     int64           `json:"unmatched_count"`
	DisputedCount      int64           `json:"disputed_count"`
}

// ApplyResult reports what a single apply changed.
type ApplyResult struct {
	Transaction *Transaction `json:"transaction"`
	Allocations []Allocation `json:"allocations"`
}

type Repository interface {
	CreateAccount(ctx context.Context, organizationID int64, accountNumber, accountName, bankName, provider string) (*Account, error)
	GetActiveAccount(ctx context.Context, organizationID int64) (*Account, error)
	ListAccounts(ctx context.Context, organizationID int64) ([]Account, error)
	DeactivateAccounts(ctx context.Context, organizationID int64) error
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)

	CreateTransaction(ctx context.Context, in IngestInput, accountID *int64) (*Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	ReferenceExists(ctx context.Context, organizationID int64, reference string) (bool, error)
	ListTransactions(ctx context.Context, organizationID int64) ([]TransactionView, error)
	ListAllocations(ctx context.Context, transactionID int64) ([]Allocation, error)
	ListUnmatchedIDs(ctx context.Context, limit int32) ([]int64, error)

	// Apply and Reverse run inside one database transaction that locks
	// the inbound transaction row first, then the repayment rows they
	// touch.
	Apply(ctx context.Context, transactionID int64) (*ApplyResult, error)
	Reverse(ctx context.Context, transactionID int64) (*Transaction, error)

	Summary(ctx context.Context, organizationID int64) (*Summary, error)
}
