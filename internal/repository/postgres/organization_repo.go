package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/jackc/pgx/v5/pgxpool"
)

const organizationColumns = `id, name, COALESCE(contact_person, ''), COALESCE(contact_email, ''),
       COALESCE(contact_phone, ''), COALESCE(address, ''), is_active, created_at, updated_at`

type OrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{pool: pool}
}

func scanOrganization(row interface{ Scan(...any) error }) (*organization.Entity, error) {
	out := &organization.Entity{}
	err := row.Scan(
		&out.ID, &out.Name, &out.ContactPerson, &out.ContactEmail,
		&out.ContactPhone, &out.Address, &out.IsActive, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, in organization.CreateInput) (*organization.Entity, error) {
	q := `
INSERT INTO partner_organizations (name, contact_person, contact_email, contact_phone, address)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + organizationColumns
	return scanOrganization(r.pool.QueryRow(ctx, q, in.Name, in.ContactPerson, in.ContactEmail, in.ContactPhone, in.Address))
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*organization.Entity, error) {
	q := `SELECT ` + organizationColumns + ` FROM partner_organizations WHERE id = $1`
	return scanOrganization(r.pool.QueryRow(ctx, q, id))
}

func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*organization.Entity, error) {
	q := `SELECT ` + organizationColumns + ` FROM partner_organizations WHERE LOWER(name) = LOWER($1)`
	return scanOrganization(r.pool.QueryRow(ctx, q, name))
}

func (r *OrganizationRepository) List(ctx context.Context) ([]organization.Entity, error) {
	q := `SELECT ` + organizationColumns + ` FROM partner_organizations ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]organization.Entity, 0)
	for rows.Next() {
		item, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *OrganizationRepository) Update(ctx context.Context, id int64, in organization.UpdateInput) (*organization.Entity, error) {
	builder := strings.Builder{}
	builder.WriteString(`UPDATE partner_organizations SET updated_at = NOW()`)

	args := []any{id}
	argPos := 2
	set := func(column string, value any) {
		builder.WriteString(", ")
		builder.WriteString(column)
		builder.WriteString(" = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, value)
		argPos++
	}

	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.ContactPerson != nil {
		set("contact_person", *in.ContactPerson)
	}
	if in.ContactEmail != nil {
		set("contact_email", *in.ContactEmail)
	}
	if in.ContactPhone != nil {
		set("contact_phone", *in.ContactPhone)
	}
	if in.Address != nil {
		set("address", *in.Address)
	}
	if in.IsActive != nil {
		set("is_active", *in.IsActive)
	}

	builder.WriteString(" WHERE id = $1 RETURNING ")
	builder.WriteString(organizationColumns)
	return scanOrganization(r.pool.QueryRow(ctx, builder.String(), args...))
}
