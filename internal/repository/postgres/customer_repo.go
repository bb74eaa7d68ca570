package postgres

import (
	"context"
	"errors"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const customerColumns = `id, organization_id, first_name, last_name, COALESCE(email, ''),
       COALESCE(phone_number, ''), COALESCE(bvn, ''), COALESCE(staff_id, ''), date_of_birth,
       COALESCE(employer_name, ''), net_monthly_pay::text, COALESCE(bank_name, ''),
       COALESCE(bank_account, ''), COALESCE(nun_account_number, ''), account_balance::text,
       created_at, updated_at`

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func scanCustomer(row interface{ Scan(...any) error }) (*customer.Entity, error) {
	out := &customer.Entity{}
	var netPay *string
	var balance string
	err := row.Scan(
		&out.ID, &out.OrganizationID, &out.FirstName, &out.LastName, &out.Email,
		&out.PhoneNumber, &out.BVN, &out.StaffID, &out.DateOfBirth,
		&out.EmployerName, &netPay, &out.BankName,
		&out.BankAccount, &out.NUNAccountNumber, &balance,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if out.NetMonthlyPay, err = parseDecimalPtr(netPay); err != nil {
		return nil, err
	}
	if out.AccountBalance, err = parseDecimal(balance); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CustomerRepository) Create(ctx context.Context, in customer.CreateInput) (*customer.Entity, error) {
	q := `
INSERT INTO customers (
  organization_id, first_name, last_name, email, phone_number, bvn, staff_id,
  date_of_birth, employer_name, net_monthly_pay, bank_name, bank_account
) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10::numeric, $11, $12)
RETURNING ` + customerColumns
	return scanCustomer(r.pool.QueryRow(ctx, q,
		in.OrganizationID, in.FirstName, in.LastName, in.Email, in.PhoneNumber, in.BVN, in.StaffID,
		in.DateOfBirth, in.EmployerName, bindDecimalPtr(in.NetMonthlyPay), in.BankName, in.BankAccount,
	))
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *CustomerRepository) List(ctx context.Context, organizationID int64) ([]customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers`
	args := []any{}
	if organizationID != 0 {
		q += ` WHERE organization_id = $1`
		args = append(args, organizationID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]customer.Entity, 0)
	for rows.Next() {
		item, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) GetByBVNInOrg(ctx context.Context, organizationID int64, bvn string) (*customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE organization_id = $1 AND bvn = $2`
	return scanCustomer(r.pool.QueryRow(ctx, q, organizationID, bvn))
}

func (r *CustomerRepository) GetByStaffIDInOrg(ctx context.Context, organizationID int64, staffID string) (*customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE organization_id = $1 AND staff_id = $2`
	return scanCustomer(r.pool.QueryRow(ctx, q, organizationID, staffID))
}

// UpdateEmployment refreshes the contact and employment details a
// returning applicant re-submits on the public form.
func (r *CustomerRepository) UpdateEmployment(ctx context.Context, id int64, in customer.CreateInput) (*customer.Entity, error) {
	q := `
UPDATE customers
SET first_name = $2,
    last_name = $3,
    email = COALESCE(NULLIF($4, ''), email),
    phone_number = COALESCE(NULLIF($5, ''), phone_number),
    employer_name = COALESCE(NULLIF($6, ''), employer_name),
    net_monthly_pay = COALESCE($7::numeric, net_monthly_pay),
    bank_name = COALESCE(NULLIF($8, ''), bank_name),
    bank_account = COALESCE(NULLIF($9, ''), bank_account),
    updated_at = NOW()
WHERE id = $1
RETURNING ` + customerColumns
	return scanCustomer(r.pool.QueryRow(ctx, q,
		id, in.FirstName, in.LastName, in.Email, in.PhoneNumber,
		in.EmployerName, bindDecimalPtr(in.NetMonthlyPay), in.BankName, in.BankAccount,
	))
}

func (r *CustomerRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE nun_account_number = $1)`, accountNumber).Scan(&exists)
	return exists, err
}

func (r *CustomerRepository) SetAccountNumber(ctx context.Context, id int64, accountNumber string) (*customer.Entity, error) {
	q := `
UPDATE customers SET nun_account_number = $2, updated_at = NOW()
WHERE id = $1 AND nun_account_number IS NULL
RETURNING ` + customerColumns
	c, err := scanCustomer(r.pool.QueryRow(ctx, q, id, accountNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		// Already assigned concurrently; return the current row.
		return r.GetByID(ctx, id)
	}
	return c, err
}
