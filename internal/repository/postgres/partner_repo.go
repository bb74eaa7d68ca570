package postgres

import (
	"context"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/partner"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const partnerUserColumns = `id, organization_id, full_name, email, COALESCE(hashed_password, ''), role, is_active, created_at, updated_at`

const partnerInviteColumns = `id, partner_user_id, token_hash, expires_at, used_at, created_at`

type PartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

func scanPartnerUser(row interface{ Scan(...any) error }) (*partner.User, error) {
	out := &partner.User{}
	err := row.Scan(&out.ID, &out.OrganizationID, &out.FullName, &out.Email, &out.HashedPassword, &out.Role, &out.IsActive, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanPartnerInvite(row interface{ Scan(...any) error }) (*partner.Invite, error) {
	out := &partner.Invite{}
	err := row.Scan(&out.ID, &out.PartnerUserID, &out.TokenHash, &out.ExpiresAt, &out.UsedAt, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PartnerRepository) GetUserByID(ctx context.Context, id int64) (*partner.User, error) {
	q := `SELECT ` + partnerUserColumns + ` FROM partner_users WHERE id = $1`
	return scanPartnerUser(r.pool.QueryRow(ctx, q, id))
}

func (r *PartnerRepository) GetUserByEmail(ctx context.Context, email string) (*partner.User, error) {
	q := `SELECT ` + partnerUserColumns + ` FROM partner_users WHERE LOWER(email) = LOWER($1)`
	return scanPartnerUser(r.pool.QueryRow(ctx, q, email))
}

func (r *PartnerRepository) CreateUser(ctx context.Context, organizationID int64, fullName, email, role string) (*partner.User, error) {
	q := `
INSERT INTO partner_users (organization_id, full_name, email, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + partnerUserColumns
	return scanPartnerUser(r.pool.QueryRow(ctx, q, organizationID, fullName, email, role))
}

func (r *PartnerRepository) UpdateUserName(ctx context.Context, id int64, fullName string) (*partner.User, error) {
	q := `UPDATE partner_users SET full_name = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + partnerUserColumns
	return scanPartnerUser(r.pool.QueryRow(ctx, q, id, fullName))
}

func (r *PartnerRepository) ListUsers(ctx context.Context, organizationID int64) ([]partner.User, error) {
	q := `SELECT ` + partnerUserColumns + ` FROM partner_users`
	args := []any{}
	if organizationID != 0 {
		q += ` WHERE organization_id = $1`
		args = append(args, organizationID)
	}
	q += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]partner.User, 0)
	for rows.Next() {
		item, err := scanPartnerUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *PartnerRepository) SetUserActive(ctx context.Context, id int64, active bool) (*partner.User, error) {
	q := `UPDATE partner_users SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + partnerUserColumns
	return scanPartnerUser(r.pool.QueryRow(ctx, q, id, active))
}

func (r *PartnerRepository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM partner_invite_tokens WHERE partner_user_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM partner_users WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PartnerRepository) ActivateWithPassword(ctx context.Context, id int64, hashedPassword string) (*partner.User, error) {
	q := `
UPDATE partner_users SET hashed_password = $2, is_active = TRUE, updated_at = NOW()
WHERE id = $1
RETURNING ` + partnerUserColumns
	return scanPartnerUser(r.pool.QueryRow(ctx, q, id, hashedPassword))
}

func (r *PartnerRepository) CreateInvite(ctx context.Context, partnerUserID int64, tokenHash string, expiresAt time.Time) (*partner.Invite, error) {
	q := `
INSERT INTO partner_invite_tokens (partner_user_id, token_hash, expires_at)
VALUES ($1, $2, $3)
RETURNING ` + partnerInviteColumns
	return scanPartnerInvite(r.pool.QueryRow(ctx, q, partnerUserID, tokenHash, expiresAt))
}

func (r *PartnerRepository) GetInviteByHash(ctx context.Context, tokenHash string) (*partner.Invite, error) {
	q := `SELECT ` + partnerInviteColumns + ` FROM partner_invite_tokens WHERE token_hash = $1`
	return scanPartnerInvite(r.pool.QueryRow(ctx, q, tokenHash))
}

func (r *PartnerRepository) MarkInviteUsed(ctx context.Context, id int64, usedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE partner_invite_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, usedAt)
	return err
}

func (r *PartnerRepository) StaffLoans(ctx context.Context, organizationID int64) ([]partner.StaffLoan, error) {
	q := `
SELECT l.id, c.id, c.first_name || ' ' || c.last_name, COALESCE(c.staff_id, ''),
       l.principal_amount::text, l.total_payable::text,
       COALESCE(SUM(r.amount_paid), 0)::text AS total_paid,
       COALESCE(SUM(GREATEST(r.amount_due - r.amount_paid, 0)), 0)::text AS outstanding,
       MIN(r.due_date) FILTER (WHERE NOT r.is_paid) AS next_due,
       l.status
FROM loans l
JOIN customers c ON c.id = l.customer_id
LEFT JOIN repayments r ON r.loan_id = l.id
WHERE c.organization_id = $1
GROUP BY l.id, c.id
ORDER BY l.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]partner.StaffLoan, 0)
	for rows.Next() {
		var item partner.StaffLoan
		var principal, total, paid, outstanding string
		if err := rows.Scan(
			&item.LoanID, &item.CustomerID, &item.CustomerName, &item.StaffID,
			&principal, &total, &paid, &outstanding, &item.NextDueDate, &item.Status,
		); err != nil {
			return nil, err
		}
		if item.Principal, err = parseDecimal(principal); err != nil {
			return nil, err
		}
		if item.TotalPayable, err = parseDecimal(total); err != nil {
			return nil, err
		}
		if item.TotalPaid, err = parseDecimal(paid); err != nil {
			return nil, err
		}
		if item.Outstanding, err = parseDecimal(outstanding); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *PartnerRepository) MonthlyDue(ctx context.Context, organizationID int64, year, month int) (*partner.MonthlyDue, error) {
	q := `
SELECT l.id, c.first_name || ' ' || c.last_name, COALESCE(c.staff_id, ''),
       r.installment_number, r.due_date, r.amount_due::text, r.amount_paid::text
FROM repayments r
JOIN loans l ON l.id = r.loan_id
JOIN customers c ON c.id = l.customer_id
WHERE c.organization_id = $1
  AND EXTRACT(YEAR FROM r.due_date) = $2
  AND EXTRACT(MONTH FROM r.due_date) = $3
ORDER BY r.due_date, l.id, r.installment_number
`
	rows, err := r.pool.Query(ctx, q, organizationID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &partner.MonthlyDue{Year: year, Month: month, TotalDue: decimal.Zero, Installments: make([]partner.MonthlyDueLine, 0)}
	for rows.Next() {
		var line partner.MonthlyDueLine
		var due, paid string
		if err := rows.Scan(&line.LoanID, &line.CustomerName, &line.StaffID, &line.InstallmentNumber, &line.DueDate, &due, &paid); err != nil {
			return nil, err
		}
		if line.AmountDue, err = parseDecimal(due); err != nil {
			return nil, err
		}
		if line.AmountPaid, err = parseDecimal(paid); err != nil {
			return nil, err
		}
		line.Outstanding = line.AmountDue.Sub(line.AmountPaid)
		if line.Outstanding.IsNegative() {
			line.Outstanding = decimal.Zero
		}
		out.TotalDue = out.TotalDue.Add(line.Outstanding)
		out.Installments = append(out.Installments, line)
	}
	return out, rows.Err()
}
