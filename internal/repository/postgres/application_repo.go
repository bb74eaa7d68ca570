package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const applicationColumns = `id, customer_id, product_id, link_id, requested_amount::text,
       approved_amount::text, tenor_months, COALESCE(purpose, ''), status, submitted_at, decided_at, updated_at`

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

func scanApplication(row interface{ Scan(...any) error }) (*application.Entity, error) {
	out := &application.Entity{}
	var requested string
	var approved *string
	err := row.Scan(
		&out.ID, &out.CustomerID, &out.ProductID, &out.LinkID, &requested,
		&approved, &out.TenorMonths, &out.Purpose, &out.Status, &out.SubmittedAt, &out.DecidedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if out.RequestedAmount, err = parseDecimal(requested); err != nil {
		return nil, err
	}
	if out.ApprovedAmount, err = parseDecimalPtr(approved); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, in application.CreateInput) (*application.Entity, error) {
	q := `
INSERT INTO loan_applications (customer_id, product_id, link_id, requested_amount, tenor_months, purpose)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
RETURNING ` + applicationColumns
	return scanApplication(r.pool.QueryRow(ctx, q,
		in.CustomerID, in.ProductID, in.LinkID, in.RequestedAmount.StringFixed(2), in.TenorMonths, in.Purpose,
	))
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*application.Entity, error) {
	q := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`
	return scanApplication(r.pool.QueryRow(ctx, q, id))
}

func (r *ApplicationRepository) List(ctx context.Context, f application.ListFilter) ([]application.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + applicationColumns + ` FROM loan_applications WHERE 1=1`)

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
	builder.WriteString(" ORDER BY submitted_at DESC")
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

	out := make([]application.Entity, 0)
	for rows.Next() {
		item, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) ListByCustomer(ctx context.Context, customerID int64) ([]application.Entity, error) {
	q := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE customer_id = $1 ORDER BY submitted_at DESC`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Entity, 0)
	for rows.Next() {
		item, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status string, approvedAmount *decimal.Decimal, decidedAt *time.Time) (*application.Entity, error) {
	q := `
UPDATE loan_applications
SET status = $2,
    approved_amount = COALESCE($3::numeric, approved_amount),
    decided_at = COALESCE($4, decided_at),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + applicationColumns
	return scanApplication(r.pool.QueryRow(ctx, q, id, status, bindDecimalPtr(approvedAmount), decidedAt))
}

func (r *ApplicationRepository) HasOpenApplication(ctx context.Context, customerID int64) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM loan_applications WHERE customer_id = $1 AND status IN ('PENDING', 'UNDER_REVIEW'))`
	var exists bool
	err := r.pool.QueryRow(ctx, q, customerID).Scan(&exists)
	return exists, err
}

// HasDisbursementEvidence treats any of the three traces of a payout
// (status, loan row, disbursement row) as disbursed.
func (r *ApplicationRepository) HasDisbursementEvidence(ctx context.Context, applicationID int64) (bool, error) {
	q := `
SELECT EXISTS (SELECT 1 FROM loan_applications WHERE id = $1 AND status = 'DISBURSED')
    OR EXISTS (SELECT 1 FROM loans WHERE application_id = $1)
    OR EXISTS (SELECT 1 FROM disbursements WHERE application_id = $1)
`
	var exists bool
	err := r.pool.QueryRow(ctx, q, applicationID).Scan(&exists)
	return exists, err
}
