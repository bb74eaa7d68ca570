package postgres

import (
	"context"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/disbursement"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const disbursementColumns = `id, application_id, loan_id, amount::text, reference, method, disbursed_by, disbursed_at`

type DisbursementRepository struct {
	pool *pgxpool.Pool
}

func NewDisbursementRepository(pool *pgxpool.Pool) *DisbursementRepository {
	return &DisbursementRepository{pool: pool}
}

func scanDisbursement(row interface{ Scan(...any) error }) (*disbursement.Entity, error) {
	out := &disbursement.Entity{}
	var amount string
	err := row.Scan(&out.ID, &out.ApplicationID, &out.LoanID, &amount, &out.Reference, &out.Method, &out.DisbursedBy, &out.DisbursedAt)
	if err != nil {
		return nil, err
	}
	if out.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return out, nil
}

// Disburse writes the whole payout in one transaction: the application
// row is locked first so two disbursers cannot both pass the status
// check.
func (r *DisbursementRepository) Disburse(ctx context.Context, p disbursement.Params) (*disbursement.Entity, *loan.Entity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM loan_applications WHERE id = $1 FOR UPDATE`, p.ApplicationID).Scan(&status)
	if err != nil {
		return nil, nil, err
	}
	if status == application.StatusDisbursed {
		return nil, nil, disbursement.ErrAlreadyDisbursed
	}
	if status != application.StatusApproved {
		return nil, nil, disbursement.ErrNotApproved
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM disbursements WHERE application_id = $1)`, p.ApplicationID).Scan(&exists); err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, disbursement.ErrAlreadyDisbursed
	}
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM disbursements WHERE reference = $1)`, p.Reference).Scan(&exists); err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, disbursement.ErrDuplicateRef
	}

	createdLoan, err := insertLoanWithSchedule(ctx, tx, loan.CreateInput{
		ApplicationID:   &p.ApplicationID,
		CustomerID:      p.CustomerID,
		ProductID:       p.ProductID,
		PrincipalAmount: p.Amount,
		TenorMonths:     p.TenorMonths,
	}, p.InterestRate, p.TotalPayable, p.StartDate, p.Schedule)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx, `
UPDATE customers SET account_balance = account_balance + $2::numeric, updated_at = NOW() WHERE id = $1`,
		p.CustomerID, p.Amount.StringFixed(2),
	)
	if err != nil {
		return nil, nil, err
	}

	created, err := scanDisbursement(tx.QueryRow(ctx, `
INSERT INTO disbursements (application_id, loan_id, amount, reference, method, disbursed_by, disbursed_at)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
RETURNING `+disbursementColumns,
		p.ApplicationID, createdLoan.ID, p.Amount.StringFixed(2), p.Reference, p.Method, p.DisbursedBy, p.StartDate,
	))
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx, `
UPDATE loan_applications SET status = 'DISBURSED', updated_at = NOW() WHERE id = $1`, p.ApplicationID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return created, createdLoan, nil
}

func (r *DisbursementRepository) GetByApplication(ctx context.Context, applicationID int64) (*disbursement.Entity, error) {
	q := `SELECT ` + disbursementColumns + ` FROM disbursements WHERE application_id = $1`
	return scanDisbursement(r.pool.QueryRow(ctx, q, applicationID))
}
