package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID             int64
	FullName       string
	Email          string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AuthRepository struct {
	pool *pgxpool.Pool
}

func NewAuthRepository(pool *pgxpool.Pool) *AuthRepository {
	return &AuthRepository{pool: pool}
}

const userColumns = `id, full_name, email, hashed_password, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.HashedPassword, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *AuthRepository) CreateUser(ctx context.Context, fullName, email, hashedPassword, role string) (*User, error) {
	q := `
INSERT INTO users (full_name, email, hashed_password, role)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, fullName, email, hashedPassword, role))
}

func (r *AuthRepository) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, userID))
}

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *AuthRepository) ListUsers(ctx context.Context) ([]*User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *AuthRepository) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'ADMIN'`).Scan(&n)
	return n, err
}

func (r *AuthRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	q := `UPDATE users SET hashed_password = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, userID, hashedPassword)
	return err
}

func (r *AuthRepository) SetUserActive(ctx context.Context, userID int64, active bool) (*User, error) {
	q := `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, userID, active))
}
