package postgres

import (
	"context"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const remitAccountColumns = `id, organization_id, account_number, account_name, bank_name, provider, is_active, created_at`

const inboundTxColumns = `id, organization_id, account_id, amount::text, reference, COALESCE(narration, ''), match_status, received_at, matched_at`

const allocationColumns = `id, transaction_id, repayment_id, amount_applied::text, created_at`

type RemittanceRepository struct {
	pool *pgxpool.Pool
}

func NewRemittanceRepository(pool *pgxpool.Pool) *RemittanceRepository {
	return &RemittanceRepository{pool: pool}
}

func scanRemitAccount(row interface{ Scan(...any) error }) (*remittance.Account, error) {
	out := &remittance.Account{}
	err := row.Scan(&out.ID, &out.OrganizationID, &out.AccountNumber, &out.AccountName, &out.BankName, &out.Provider, &out.IsActive, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanInboundTx(row interface{ Scan(...any) error }) (*remittance.Transaction, error) {
	out := &remittance.Transaction{}
	var amount string
	err := row.Scan(&out.ID, &out.OrganizationID, &out.AccountID, &amount, &out.Reference, &out.Narration, &out.MatchStatus, &out.ReceivedAt, &out.MatchedAt)
	if err != nil {
		return nil, err
	}
	if out.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAllocation(row interface{ Scan(...any) error }) (*remittance.Allocation, error) {
	out := &remittance.Allocation{}
	var amount string
	err := row.Scan(&out.ID, &out.TransactionID, &out.RepaymentID, &amount, &out.CreatedAt)
	if err != nil {
		return nil, err
	}
	if out.AmountApplied, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *RemittanceRepository) CreateAccount(ctx context.Context, organizationID int64, accountNumber, accountName, bankName, provider string) (*remittance.Account, error) {
	q := `
INSERT INTO partner_remittance_accounts (organization_id, account_number, account_name, bank_name, provider)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + remitAccountColumns
	return scanRemitAccount(r.pool.QueryRow(ctx, q, organizationID, accountNumber, accountName, bankName, provider))
}

func (r *RemittanceRepository) GetActiveAccount(ctx context.Context, organizationID int64) (*remittance.Account, error) {
	q := `
SELECT ` + remitAccountColumns + `
FROM partner_remittance_accounts
WHERE organization_id = $1 AND is_active
ORDER BY created_at DESC
LIMIT 1
`
	return scanRemitAccount(r.pool.QueryRow(ctx, q, organizationID))
}

func (r *RemittanceRepository) ListAccounts(ctx context.Context, organizationID int64) ([]remittance.Account, error) {
	q := `SELECT ` + remitAccountColumns + ` FROM partner_remittance_accounts WHERE organization_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]remittance.Account, 0)
	for rows.Next() {
		item, err := scanRemitAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *RemittanceRepository) DeactivateAccounts(ctx context.Context, organizationID int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE partner_remittance_accounts SET is_active = FALSE WHERE organization_id = $1 AND is_active`, organizationID)
	return err
}

func (r *RemittanceRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM partner_remittance_accounts WHERE account_number = $1)`, accountNumber).Scan(&exists)
	return exists, err
}

func (r *RemittanceRepository) CreateTransaction(ctx context.Context, in remittance.IngestInput, accountID *int64) (*remittance.Transaction, error) {
	q := `
INSERT INTO inbound_transactions (organization_id, account_id, amount, reference, narration)
VALUES ($1, $2, $3::numeric, $4, $5)
RETURNING ` + inboundTxColumns
	return scanInboundTx(r.pool.QueryRow(ctx, q, in.OrganizationID, accountID, in.Amount.StringFixed(2), in.Reference, in.Narration))
}

func (r *RemittanceRepository) GetTransaction(ctx context.Context, id int64) (*remittance.Transaction, error) {
	q := `SELECT ` + inboundTxColumns + ` FROM inbound_transactions WHERE id = $1`
	return scanInboundTx(r.pool.QueryRow(ctx, q, id))
}

// References are unique per organization; two employers may legitimately
// submit the same bank reference.
func (r *RemittanceRepository) ReferenceExists(ctx context.Context, organizationID int64, reference string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inbound_transactions WHERE organization_id = $1 AND reference = $2)`, organizationID, reference).Scan(&exists)
	return exists, err
}

func (r *RemittanceRepository) ListTransactions(ctx context.Context, organizationID int64) ([]remittance.TransactionView, error) {
	q := `
SELECT t.id, t.organization_id, t.account_id, t.amount::text, t.reference, COALESCE(t.narration, ''),
       t.match_status, t.received_at, t.matched_at,
       COALESCE(SUM(a.amount_applied), 0)::text AS applied
FROM inbound_transactions t
LEFT JOIN transaction_allocations a ON a.transaction_id = t.id
WHERE t.organization_id = $1
GROUP BY t.id
ORDER BY t.received_at DESC
`
	rows, err := r.pool.Query(ctx, q, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]remittance.TransactionView, 0)
	for rows.Next() {
		var item remittance.TransactionView
		var amount, applied string
		if err := rows.Scan(
			&item.ID, &item.OrganizationID, &item.AccountID, &amount, &item.Reference, &item.Narration,
			&item.MatchStatus, &item.ReceivedAt, &item.MatchedAt, &applied,
		); err != nil {
			return nil, err
		}
		if item.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		if item.AppliedAmount, err = parseDecimal(applied); err != nil {
			return nil, err
		}
		item.UnallocatedAmount = item.Amount.Sub(item.AppliedAmount)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *RemittanceRepository) ListAllocations(ctx context.Context, transactionID int64) ([]remittance.Allocation, error) {
	q := `SELECT ` + allocationColumns + ` FROM transaction_allocations WHERE transaction_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]remittance.Allocation, 0)
	for rows.Next() {
		item, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *RemittanceRepository) ListUnmatchedIDs(ctx context.Context, limit int32) ([]int64, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id FROM inbound_transactions WHERE match_status = 'UNMATCHED' ORDER BY received_at LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// lockTransaction reads the inbound transaction under FOR UPDATE so
// concurrent apply/reverse calls on the same row serialize.
func lockTransaction(ctx context.Context, tx pgx.Tx, transactionID int64) (*remittance.Transaction, error) {
	q := `SELECT ` + inboundTxColumns + ` FROM inbound_transactions WHERE id = $1 FOR UPDATE`
	return scanInboundTx(tx.QueryRow(ctx, q, transactionID))
}

func recomputeLoanStatuses(ctx context.Context, tx pgx.Tx, loanIDs map[int64]struct{}) error {
	for loanID := range loanIDs {
		if _, err := tx.Exec(ctx, loanStatusRecompute, loanID); err != nil {
			return err
		}
	}
	return nil
}

// Apply allocates an UNMATCHED transaction across the organization's
// unpaid repayments, ordered by due date then installment number. The
// transaction row is locked first, then the repayment rows, so
// concurrent transactions for one organization cannot double-count a
// repayment.
func (r *RemittanceRepository) Apply(ctx context.Context, transactionID int64) (*remittance.ApplyResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inbound, err := lockTransaction(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if inbound.MatchStatus != remittance.StatusUnmatched {
		return nil, remittance.ErrAlreadyMatched
	}
	var allocated bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transaction_allocations WHERE transaction_id = $1)`, transactionID).Scan(&allocated); err != nil {
		return nil, err
	}
	if allocated {
		return nil, remittance.ErrAlreadyMatched
	}

	q := `
SELECT r.id, r.loan_id, r.amount_due::text, r.amount_paid::text
FROM repayments r
JOIN loans l ON l.id = r.loan_id
JOIN customers c ON c.id = l.customer_id
WHERE c.organization_id = $1 AND NOT r.is_paid
ORDER BY r.due_date, r.installment_number
FOR UPDATE OF r
`
	rows, err := tx.Query(ctx, q, inbound.OrganizationID)
	if err != nil {
		return nil, err
	}

	states := make([]remittance.RepaymentState, 0)
	loanByRepayment := make(map[int64]int64)
	for rows.Next() {
		var state remittance.RepaymentState
		var loanID int64
		var due, paid string
		if err := rows.Scan(&state.ID, &loanID, &due, &paid); err != nil {
			rows.Close()
			return nil, err
		}
		if state.AmountDue, err = parseDecimal(due); err != nil {
			rows.Close()
			return nil, err
		}
		if state.AmountPaid, err = parseDecimal(paid); err != nil {
			rows.Close()
			return nil, err
		}
		states = append(states, state)
		loanByRepayment[state.ID] = loanID
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	plan := remittance.PlanApplication(inbound.Amount, states)

	allocations := make([]remittance.Allocation, 0, len(plan))
	touchedLoans := make(map[int64]struct{})
	for _, p := range plan {
		_, err = tx.Exec(ctx, `
UPDATE repayments
SET amount_paid = $2::numeric,
    is_paid = $3,
    paid_at = CASE WHEN $3 THEN NOW() ELSE paid_at END
WHERE id = $1`,
			p.RepaymentID, p.NewAmountPaid.StringFixed(2), p.IsPaid,
		)
		if err != nil {
			return nil, err
		}

		alloc, err := scanAllocation(tx.QueryRow(ctx, `
INSERT INTO transaction_allocations (transaction_id, repayment_id, amount_applied)
VALUES ($1, $2, $3::numeric)
RETURNING `+allocationColumns,
			transactionID, p.RepaymentID, p.AmountApplied.StringFixed(2),
		))
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, *alloc)
		touchedLoans[loanByRepayment[p.RepaymentID]] = struct{}{}
	}

	if err := recomputeLoanStatuses(ctx, tx, touchedLoans); err != nil {
		return nil, err
	}

	if len(plan) > 0 {
		inbound, err = scanInboundTx(tx.QueryRow(ctx, `
UPDATE inbound_transactions SET match_status = 'MATCHED', matched_at = NOW()
WHERE id = $1
RETURNING `+inboundTxColumns, transactionID))
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &remittance.ApplyResult{Transaction: inbound, Allocations: allocations}, nil
}

// Reverse replays the stored allocations exactly and parks the
// transaction as DISPUTED. No plan is recomputed.
func (r *RemittanceRepository) Reverse(ctx context.Context, transactionID int64) (*remittance.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	inbound, err := lockTransaction(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if inbound.MatchStatus == remittance.StatusUnmatched {
		return nil, remittance.ErrNothingToReverse
	}

	allocRows, err := tx.Query(ctx, `
SELECT `+allocationColumns+`
FROM transaction_allocations
WHERE transaction_id = $1
ORDER BY id
FOR UPDATE`, transactionID)
	if err != nil {
		return nil, err
	}
	allocations := make([]remittance.Allocation, 0)
	for allocRows.Next() {
		item, err := scanAllocation(allocRows)
		if err != nil {
			allocRows.Close()
			return nil, err
		}
		allocations = append(allocations, *item)
	}
	allocRows.Close()
	if err := allocRows.Err(); err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, remittance.ErrNothingToReverse
	}

	repaymentIDs := make([]int64, 0, len(allocations))
	seen := make(map[int64]struct{})
	for _, a := range allocations {
		if _, ok := seen[a.RepaymentID]; !ok {
			seen[a.RepaymentID] = struct{}{}
			repaymentIDs = append(repaymentIDs, a.RepaymentID)
		}
	}

	repRows, err := tx.Query(ctx, `
SELECT id, loan_id, amount_due::text, amount_paid::text
FROM repayments
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`, repaymentIDs)
	if err != nil {
		return nil, err
	}
	states := make(map[int64]remittance.RepaymentState)
	loanByRepayment := make(map[int64]int64)
	for repRows.Next() {
		var state remittance.RepaymentState
		var loanID int64
		var due, paid string
		if err := repRows.Scan(&state.ID, &loanID, &due, &paid); err != nil {
			repRows.Close()
			return nil, err
		}
		if state.AmountDue, err = parseDecimal(due); err != nil {
			repRows.Close()
			return nil, err
		}
		if state.AmountPaid, err = parseDecimal(paid); err != nil {
			repRows.Close()
			return nil, err
		}
		states[state.ID] = state
		loanByRepayment[state.ID] = loanID
	}
	repRows.Close()
	if err := repRows.Err(); err != nil {
		return nil, err
	}

	changes := remittance.PlanReversal(allocations, states)
	touchedLoans := make(map[int64]struct{})
	for _, c := range changes {
		_, err = tx.Exec(ctx, `
UPDATE repayments
SET amount_paid = $2::numeric,
    is_paid = $3,
    paid_at = CASE WHEN $3 THEN paid_at ELSE NULL END
WHERE id = $1`,
			c.RepaymentID, c.NewAmountPaid.StringFixed(2), c.IsPaid,
		)
		if err != nil {
			return nil, err
		}
		touchedLoans[loanByRepayment[c.RepaymentID]] = struct{}{}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transaction_allocations WHERE transaction_id = $1`, transactionID); err != nil {
		return nil, err
	}
	if err := recomputeLoanStatuses(ctx, tx, touchedLoans); err != nil {
		return nil, err
	}

	inbound, err = scanInboundTx(tx.QueryRow(ctx, `
UPDATE inbound_transactions SET match_status = 'DISPUTED', matched_at = NULL
WHERE id = $1
RETURNING `+inboundTxColumns, transactionID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inbound, nil
}

// Summary is computed entirely by summation over the underlying rows.
func (r *RemittanceRepository) Summary(ctx context.Context, organizationID int64) (*remittance.Summary, error) {
	out := &remittance.Summary{OrganizationID: organizationID}

	qTx := `
SELECT COALESCE(SUM(amount), 0)::text,
       COUNT(*)::bigint,
       COUNT(*) FILTER (WHERE match_status = 'MATCHED')::bigint,
       COUNT(*) FILTER (WHERE match_status = 'UNMATCHED')::bigint,
       COUNT(*) FILTER (WHERE match_status = 'DISPUTED')::bigint
FROM inbound_transactions
WHERE organization_id = $1
`
	var remitted string
	err := r.pool.QueryRow(ctx, qTx, organizationID).Scan(&remitted, &out.TransactionCount, &out.MatchedCount, &out.UnmatchedCount, &out.DisputedCount)
	if err != nil {
		return nil, err
	}
	if out.TotalRemitted, err = parseDecimal(remitted); err != nil {
		return nil, err
	}

	qApplied := `
SELECT COALESCE(SUM(a.amount_applied), 0)::text
FROM transaction_allocations a
JOIN inbound_transactions t ON t.id = a.transaction_id
WHERE t.organization_id = $1
`
	var applied string
	if err := r.pool.QueryRow(ctx, qApplied, organizationID).Scan(&applied); err != nil {
		return nil, err
	}
	if out.TotalApplied, err = parseDecimal(applied); err != nil {
		return nil, err
	}

	qOutstanding := `
SELECT COALESCE(SUM(GREATEST(r.amount_due - r.amount_paid, 0)), 0)::text
FROM repayments r
JOIN loans l ON l.id = r.loan_id
JOIN customers c ON c.id = l.customer_id
WHERE c.organization_id = $1
`
	var outstanding string
	if err := r.pool.QueryRow(ctx, qOutstanding, organizationID).Scan(&outstanding); err != nil {
		return nil, err
	}
	if out.TotalOutstanding, err = parseDecimal(outstanding); err != nil {
		return nil, err
	}

	out.UnallocatedBalance = out.TotalRemitted.Sub(out.TotalApplied)
	return out, nil
}
