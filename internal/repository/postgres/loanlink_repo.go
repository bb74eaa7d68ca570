package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loanlink"
	"github.com/jackc/pgx/v5/pgxpool"
)

const linkColumns = `id, organization_id, product_id, token, is_active, expires_at, created_at`

type LoanLinkRepository struct {
	pool *pgxpool.Pool
}

func NewLoanLinkRepository(pool *pgxpool.Pool) *LoanLinkRepository {
	return &LoanLinkRepository{pool: pool}
}

func scanLink(row interface{ Scan(...any) error }) (*loanlink.Entity, error) {
	out := &loanlink.Entity{}
	err := row.Scan(&out.ID, &out.OrganizationID, &out.ProductID, &out.Token, &out.IsActive, &out.ExpiresAt, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanLinkRepository) Create(ctx context.Context, in loanlink.CreateInput, token string) (*loanlink.Entity, error) {
	q := `
INSERT INTO company_loan_links (organization_id, product_id, token, expires_at)
VALUES ($1, $2, $3, $4)
RETURNING ` + linkColumns
	return scanLink(r.pool.QueryRow(ctx, q, in.OrganizationID, in.ProductID, token, in.ExpiresAt))
}

func (r *LoanLinkRepository) GetByID(ctx context.Context, id int64) (*loanlink.Entity, error) {
	q := `SELECT ` + linkColumns + ` FROM company_loan_links WHERE id = $1`
	return scanLink(r.pool.QueryRow(ctx, q, id))
}

func (r *LoanLinkRepository) GetByToken(ctx context.Context, token string) (*loanlink.Entity, error) {
	q := `SELECT ` + linkColumns + ` FROM company_loan_links WHERE token = $1`
	return scanLink(r.pool.QueryRow(ctx, q, token))
}

func (r *LoanLinkRepository) List(ctx context.Context, f loanlink.ListFilter) ([]loanlink.Entity, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + linkColumns + ` FROM company_loan_links WHERE 1=1`)

	args := []any{}
	argPos := 1
	if f.OrganizationID != 0 {
		builder.WriteString(" AND organization_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.OrganizationID)
		argPos++
	}
	if f.ProductID != 0 {
		builder.WriteString(" AND product_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.ProductID)
	}
	builder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loanlink.Entity, 0)
	for rows.Next() {
		item, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *LoanLinkRepository) SetActive(ctx context.Context, id int64, active bool) (*loanlink.Entity, error) {
	q := `UPDATE company_loan_links SET is_active = $2 WHERE id = $1 RETURNING ` + linkColumns
	return scanLink(r.pool.QueryRow(ctx, q, id, active))
}

func (r *LoanLinkRepository) ResolvePublic(ctx context.Context, token string) (*loanlink.PublicView, error) {
	q := `
SELECT l.token, o.id, o.name, p.id, p.name, p.interest_rate::text, p.max_tenor_months,
       p.min_amount::text, p.max_amount::text, p.repayment_frequency
FROM company_loan_links l
JOIN partner_organizations o ON o.id = l.organization_id
JOIN loan_products p ON p.id = l.product_id
WHERE l.token = $1
`
	out := &loanlink.PublicView{}
	var rate string
	var minAmount, maxAmount *string
	err := r.pool.QueryRow(ctx, q, token).Scan(
		&out.Token, &out.OrganizationID, &out.OrganizationName, &out.ProductID, &out.ProductName,
		&rate, &out.MaxTenorMonths, &minAmount, &maxAmount, &out.RepaymentFrequency,
	)
	if err != nil {
		return nil, err
	}
	if out.InterestRate, err = parseDecimal(rate); err != nil {
		return nil, err
	}
	if out.MinAmount, err = parseDecimalPtr(minAmount); err != nil {
		return nil, err
	}
	if out.MaxAmount, err = parseDecimalPtr(maxAmount); err != nil {
		return nil, err
	}
	return out, nil
}
