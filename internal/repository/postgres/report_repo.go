package postgres

import (
	"context"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/report"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// MonthlyLoans aggregates per loan over the installments due or paid in
// the given calendar month.
func (r *ReportRepository) MonthlyLoans(ctx context.Context, organizationID int64, year, month int) ([]report.MonthlyLoanRow, error) {
	q := `
SELECT l.id, c.first_name || ' ' || c.last_name, COALESCE(c.staff_id, ''),
       COALESCE(SUM(r.amount_due), 0)::text AS expected,
       COALESCE(SUM(r.amount_paid), 0)::text AS paid
FROM repayments r
JOIN loans l ON l.id = r.loan_id
JOIN customers c ON c.id = l.customer_id
WHERE c.organization_id = $1
  AND (
    (EXTRACT(YEAR FROM r.due_date) = $2 AND EXTRACT(MONTH FROM r.due_date) = $3)
    OR (r.paid_at IS NOT NULL AND EXTRACT(YEAR FROM r.paid_at) = $2 AND EXTRACT(MONTH FROM r.paid_at) = $3)
  )
GROUP BY l.id, c.id
ORDER BY l.id
`
	rows, err := r.pool.Query(ctx, q, organizationID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]report.MonthlyLoanRow, 0)
	for rows.Next() {
		var item report.MonthlyLoanRow
		var expected, paid string
		if err := rows.Scan(&item.LoanID, &item.CustomerName, &item.StaffID, &expected, &paid); err != nil {
			return nil, err
		}
		if item.Expected, err = parseDecimal(expected); err != nil {
			return nil, err
		}
		if item.Paid, err = parseDecimal(paid); err != nil {
			return nil, err
		}
		item.Outstanding = item.Expected.Sub(item.Paid)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *ReportRepository) Legacy(ctx context.Context, organizationID int64, year, month int) (*report.LegacyReport, error) {
	out := &report.LegacyReport{OrganizationID: organizationID, Year: year, Month: month}

	qLoans := `
SELECT COUNT(*) FILTER (WHERE l.status = 'ACTIVE')::bigint,
       COUNT(*) FILTER (WHERE EXTRACT(YEAR FROM l.created_at) = $2 AND EXTRACT(MONTH FROM l.created_at) = $3)::bigint
FROM loans l
JOIN customers c ON c.id = l.customer_id
WHERE c.organization_id = $1
`
	if err := r.pool.QueryRow(ctx, qLoans, organizationID, year, month).Scan(&out.ActiveLoans, &out.NewLoans); err != nil {
		return nil, err
	}

	qSchedule := `
SELECT COALESCE(SUM(r.amount_due), 0)::text,
       COALESCE(SUM(r.amount_paid), 0)::text
FROM repayments r
JOIN loans l ON l.id = r.loan_id
JOIN customers c ON c.id = l.customer_id
WHERE c.organization_id = $1
  AND EXTRACT(YEAR FROM r.due_date) = $2
  AND EXTRACT(MONTH FROM r.due_date) = $3
`
	var scheduled, paid string
	if err := r.pool.QueryRow(ctx, qSchedule, organizationID, year, month).Scan(&scheduled, &paid); err != nil {
		return nil, err
	}
	var err error
	if out.ScheduledAmount, err = parseDecimal(scheduled); err != nil {
		return nil, err
	}
	if out.PaidAmount, err = parseDecimal(paid); err != nil {
		return nil, err
	}
	if out.ScheduledAmount.IsPositive() {
		rate, _ := out.PaidAmount.Div(out.ScheduledAmount).Mul(decimalHundred).Float64()
		out.CollectionRatePercent = rate
	}
	return out, nil
}

// Dashboard computes each KPI with its own query so a failure is
// reported rather than silently zeroing the rest.
func (r *ReportRepository) Dashboard(ctx context.Context, year, month int) (*report.DashboardSummary, error) {
	out := &report.DashboardSummary{}

	var outstanding, overdue string
	qOutstanding := `
SELECT COALESCE(SUM(GREATEST(amount_due - amount_paid, 0)), 0)::text,
       COALESCE(SUM(GREATEST(amount_due - amount_paid, 0)) FILTER (WHERE due_date < CURRENT_DATE AND NOT is_paid), 0)::text
FROM repayments
`
	if err := r.pool.QueryRow(ctx, qOutstanding).Scan(&outstanding, &overdue); err != nil {
		return nil, err
	}
	var err error
	if out.TotalOutstanding, err = parseDecimal(outstanding); err != nil {
		return nil, err
	}
	if out.OverdueAmount, err = parseDecimal(overdue); err != nil {
		return nil, err
	}

	var monthDue, monthCollected string
	qMonth := `
SELECT COALESCE(SUM(amount_due) FILTER (WHERE EXTRACT(YEAR FROM due_date) = $1 AND EXTRACT(MONTH FROM due_date) = $2), 0)::text,
       COALESCE(SUM(amount_paid) FILTER (WHERE paid_at IS NOT NULL AND EXTRACT(YEAR FROM paid_at) = $1 AND EXTRACT(MONTH FROM paid_at) = $2), 0)::text
FROM repayments
`
	if err := r.pool.QueryRow(ctx, qMonth, year, month).Scan(&monthDue, &monthCollected); err != nil {
		return nil, err
	}
	if out.MonthDue, err = parseDecimal(monthDue); err != nil {
		return nil, err
	}
	if out.MonthCollected, err = parseDecimal(monthCollected); err != nil {
		return nil, err
	}

	qApps := `
SELECT COUNT(*) FILTER (WHERE status IN ('PENDING', 'UNDER_REVIEW'))::bigint,
       COUNT(*) FILTER (WHERE status = 'APPROVED')::bigint
FROM loan_applications
`
	if err := r.pool.QueryRow(ctx, qApps).Scan(&out.PendingApplications, &out.ApprovedNotDisbursed); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)::bigint FROM loans WHERE status = 'ACTIVE'`).Scan(&out.ActiveLoans); err != nil {
		return nil, err
	}
	return out, nil
}
