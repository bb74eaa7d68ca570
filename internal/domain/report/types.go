package report

import (
	"context"

	"github.com/shopspring/decimal"
)

// MonthlyLoanRow is one loan's slice of the per-organization monthly
// report: installments due or paid inside the month.
type MonthlyLoanRow struct {
	LoanID       int64           `json:"loan_id"`
	CustomerName string          `json:"customer_name"`
	StaffID      string          `json:"staff_id,omitempty"`
	Expected     decimal.Decimal `json:"expected"`
	Paid         decimal.Decimal `json:"paid"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

type MonthlyReport struct {
	OrganizationID   int64            `json:"organization_id"`
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	Loans            []MonthlyLoanRow `json:"loans"`
	TotalExpected    decimal.Decimal  `json:"total_expected"`
	TotalPaid        decimal.Decimal  `json:"total_paid"`
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
}

// LegacyReport is the older aggregate-only monthly view, kept for
// existing consumers.
type LegacyReport struct {
	OrganizationID        int64           `json:"organization_id"`
	Year                  int             `json:"year"`
	Month                 int             `json:"month"`
	ActiveLoans           int64           `json:"active_loans"`
	NewLoans              int64           `json:"new_loans"`
	ScheduledAmount       decimal.Decimal `json:"scheduled_amount"`
	PaidAmount            decimal.Decimal `json:"paid_amount"`
	CollectionRatePercent float64         `json:"collection_rate_percent"`
}

type DashboardSummary struct {
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	OverdueAmount        decimal.Decimal `json:"overdue_amount"`
	MonthDue             decimal.Decimal `json:"month_due"`
	MonthCollected       decimal.Decimal `json:"month_collected"`
	PendingApplications  int64           `json:"pending_applications"`
	ApprovedNotDisbursed int64           `json:"approved_not_disbursed"`
	ActiveLoans          int64           `json:"active_loans"`
}

type Repository interface {
	MonthlyLoans(ctx context.Context, organizationID int64, year, month int) ([]MonthlyLoanRow, error)
	Legacy(ctx context.Context, organizationID int64, year, month int) (*LegacyReport, error)
	Dashboard(ctx context.Context, year, month int) (*DashboardSummary, error)
}
