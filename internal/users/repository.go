package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository is the persistence contract for users.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, hash string, at time.Time) error
}

// PostgresRepo stores users in the users table (see internal/db/migrations).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const uniqueViolation = "23505"

const userColumns = `id, uuid, name, email, phone_number, address, password, is_marketing, last_logged_in, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (uuid, name, email, phone_number, address, password, is_marketing, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING ` + userColumns

	out, err := scanUser(r.db.QueryRowContext(ctx, q,
		u.UUID,
		u.Name,
		u.Email,
		u.PhoneNumber,
		u.Address,
		u.PasswordHash,
		u.IsMarketing,
		u.CreatedAt,
		u.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return out, nil
}

func (r *PostgresRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const q = `UPDATE users SET last_logged_in = $2, updated_at = $2 WHERE id = $1`
	return execOne(ctx, r.db, q, id, at)
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id int64, hash string, at time.Time) error {
	const q = `UPDATE users SET password = $2, updated_at = $3 WHERE id = $1`
	return execOne(ctx, r.db, q, id, hash, at)
}

func execOne(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u    User
		last sql.NullTime
	)
	if err := row.Scan(
		&u.ID,
		&u.UUID,
		&u.Name,
		&u.Email,
		&u.PhoneNumber,
		&u.Address,
		&u.PasswordHash,
		&u.IsMarketing,
		&last,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if last.Valid {
		t := last.Time
		u.LastLoggedIn = &t
	}
	return u, nil
}
