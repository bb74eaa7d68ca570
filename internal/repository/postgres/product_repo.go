package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, COALESCE(description, ''), interest_rate::text, max_tenor_months,
       min_amount::text, max_amount::text, repayment_frequency, is_active, created_at, updated_at`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row interface{ Scan(...any) error }) (*product.Entity, error) {
	out := &product.Entity{}
	var rate string
	var minAmount, maxAmount *string
	err := row.Scan(
		&out.ID, &out.Name, &out.Description, &rate, &out.MaxTenorMonths,
		&minAmount, &maxAmount, &out.RepaymentFrequency, &out.IsActive, &out.CreatedAt, &out.UpdatedAt,
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

func (r *ProductRepository) Create(ctx context.Context, in product.CreateInput) (*product.Entity, error) {
	q := `
INSERT INTO loan_products (name, description, interest_rate, max_tenor_months, min_amount, max_amount, repayment_frequency)
VALUES ($1, $2, $3::numeric, $4, $5::numeric, $6::numeric, $7)
RETURNING ` + productColumns
	return scanProduct(r.pool.QueryRow(ctx, q,
		in.Name, in.Description, in.InterestRate.StringFixed(2), in.MaxTenorMonths,
		bindDecimalPtr(in.MinAmount), bindDecimalPtr(in.MaxAmount), in.RepaymentFrequency,
	))
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Entity, error) {
	q := `SELECT ` + productColumns + ` FROM loan_products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, q, id))
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Entity, error) {
	q := `SELECT ` + productColumns + ` FROM loan_products ORDER BY id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]product.Entity, 0)
	for rows.Next() {
		item, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, id int64, in product.UpdateInput) (*product.Entity, error) {
	builder := strings.Builder{}
	builder.WriteString(`UPDATE loan_products SET updated_at = NOW()`)

	args := []any{id}
	argPos := 2
	set := func(column, cast string, value any) {
		builder.WriteString(", ")
		builder.WriteString(column)
		builder.WriteString(" = $")
		builder.WriteString(strconv.Itoa(argPos))
		builder.WriteString(cast)
		args = append(args, value)
		argPos++
	}

	if in.Name != nil {
		set("name", "", *in.Name)
	}
	if in.Description != nil {
		set("description", "", *in.Description)
	}
	if in.InterestRate != nil {
		set("interest_rate", "::numeric", in.InterestRate.StringFixed(2))
	}
	if in.MaxTenorMonths != nil {
		set("max_tenor_months", "", *in.MaxTenorMonths)
	}
	if in.MinAmount != nil {
		set("min_amount", "::numeric", bindDecimalPtr(in.MinAmount))
	}
	if in.MaxAmount != nil {
		set("max_amount", "::numeric", bindDecimalPtr(in.MaxAmount))
	}
	if in.RepaymentFrequency != nil {
		set("repayment_frequency", "", *in.RepaymentFrequency)
	}
	if in.IsActive != nil {
		set("is_active", "", *in.IsActive)
	}

	builder.WriteString(" WHERE id = $1 RETURNING ")
	builder.WriteString(productColumns)
	return scanProduct(r.pool.QueryRow(ctx, builder.String(), args...))
}
