package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const loanColumns = `id, application_id, customer_id, product_id, principal_amount::text,
       interest_rate::text, total_payable::text, tenor_months, start_date, status, created_at, updated_at`

const repaymentColumns = `id, loan_id, installment_number, due_date, amount_due::text, amount_paid::text, is_paid, paid_at`

// loanStatusRecompute flips a loan between ACTIVE and CLOSED based on
// whether unpaid installments remain. DEFAULTED and
// PENDING_DISBURSEMENT are left alone.
const loanStatusRecompute = `
UPDATE loans
SET status = CASE
      WHEN EXISTS (SELECT 1 FROM repayments WHERE loan_id = loans.id AND NOT is_paid) THEN 'ACTIVE'
      ELSE 'CLOSED'
    END,
    updated_at = NOW()
WHERE id = $1 AND status IN ('ACTIVE', 'CLOSED')
`

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

func scanLoan(row interface{ Scan(...any) error }) (*loan.Entity, error) {
	out := &loan.Entity{}
	var principal, rate, total string
	err := row.Scan(
		&out.ID, &out.ApplicationID, &out.CustomerID, &out.ProductID, &principal,
		&rate, &total, &out.TenorMonths, &out.StartDate, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if out.PrincipalAmount, err = parseDecimal(principal); err != nil {
		return nil, err
	}
	if out.InterestRate, err = parseDecimal(rate); err != nil {
		return nil, err
	}
	if out.TotalPayable, err = parseDecimal(total); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRepayment(row interface{ Scan(...any) error }) (*loan.Repayment, error) {
	out := &loan.Repayment{}
	var due, paid string
	err := row.Scan(&out.ID, &out.LoanID, &out.InstallmentNumber, &out.DueDate, &due, &paid, &out.IsPaid, &out.PaidAt)
	if err != nil {
		return nil, err
	}
	if out.AmountDue, err = parseDecimal(due); err != nil {
		return nil, err
	}
	if out.AmountPaid, err = parseDecimal(paid); err != nil {
		return nil, err
	}
	return out, nil
}

func insertLoanWithSchedule(ctx context.Context, tx pgx.Tx, in loan.CreateInput, interestRate, totalPayable decimal.Decimal, startDate time.Time, schedule []loan.ScheduleLine) (*loan.Entity, error) {
	q := `
INSERT INTO loans (application_id, customer_id, product_id, principal_amount, interest_rate, total_payable, tenor_months, start_date, status)
VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, 'ACTIVE')
RETURNING ` + loanColumns
	created, err := scanLoan(tx.QueryRow(ctx, q,
		in.ApplicationID, in.CustomerID, in.ProductID, in.PrincipalAmount.StringFixed(2),
		interestRate.StringFixed(2), totalPayable.StringFixed(2), in.TenorMonths, startDate,
	))
	if err != nil {
		return nil, err
	}

	for _, line := range schedule {
		_, err = tx.Exec(ctx, `
INSERT INTO repayments (loan_id, installment_number, due_date, amount_due)
VALUES ($1, $2, $3, $4::numeric)`,
			created.ID, line.InstallmentNumber, line.DueDate, line.AmountDue.StringFixed(2),
		)
		if err != nil {
			return nil, err
		}
	}
	return created, nil
}

func (r *LoanRepository) Create(ctx context.Context, in loan.CreateInput, interestRate, totalPayable decimal.Decimal, startDate time.Time, schedule []loan.ScheduleLine) (*loan.Entity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := insertLoanWithSchedule(ctx, tx, in, interestRate, totalPayable, startDate, schedule)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return scanLoan(r.pool.QueryRow(ctx, q, id))
}

func (r *LoanRepository) List(ctx context.Context, f loan.ListFilter) ([]loan.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + loanColumns + ` FROM loans WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	if f.OrganizationID != 0 {
		builder.WriteString(" AND customer_id IN (SELECT id FROM customers WHERE organization_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(")")
		args = append(args, f.OrganizationID)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Entity, 0)
	for rows.Next() {
		item, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *LoanRepository) HasActiveLoan(ctx context.Context, customerID int64) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM loans WHERE customer_id = $1 AND status = 'ACTIVE')`
	var exists bool
	err := r.pool.QueryRow(ctx, q, customerID).Scan(&exists)
	return exists, err
}

func (r *LoanRepository) ListRepayments(ctx context.Context, loanID int64) ([]loan.Repayment, error) {
	q := `SELECT ` + repaymentColumns + ` FROM repayments WHERE loan_id = $1 ORDER BY installment_number`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Repayment, 0)
	for rows.Next() {
		item, err := scanRepayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *LoanRepository) GetRepayment(ctx context.Context, id int64) (*loan.Repayment, error) {
	q := `SELECT ` + repaymentColumns + ` FROM repayments WHERE id = $1`
	return scanRepayment(r.pool.QueryRow(ctx, q, id))
}

func (r *LoanRepository) CountAllocations(ctx context.Context, repaymentID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_allocations WHERE repayment_id = $1`, repaymentID).Scan(&n)
	return n, err
}

// ClearRepayment wipes a manually recorded payment and recomputes the
// loan status in the same transaction.
func (r *LoanRepository) ClearRepayment(ctx context.Context, repaymentID int64) (*loan.Repayment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
UPDATE repayments
SET amount_paid = 0, is_paid = FALSE, paid_at = NULL
WHERE id = $1
RETURNING ` + repaymentColumns
	cleared, err := scanRepayment(tx.QueryRow(ctx, q, repaymentID))
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, loanStatusRecompute, cleared.LoanID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cleared, nil
}
