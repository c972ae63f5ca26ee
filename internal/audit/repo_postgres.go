package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo appends events to the auth_events table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO auth_events (id, type, user_id, email, ip_address, request_id, message, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	userID := sql.NullInt64{Int64: e.UserID, Valid: e.UserID > 0}
	if _, err := r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Type),
		userID,
		e.Email,
		e.IPAddress,
		e.RequestID,
		e.Message,
		e.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
