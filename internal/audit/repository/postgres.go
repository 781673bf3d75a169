package repository

import (
	"context"
	"database/sql"

	"storefront-auth/backend/internal/audit/domain"
)

const (
	queryCreate = `INSERT INTO audit_logs (id, account_id, action, ip, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	queryListByAccount = `SELECT id, account_id, action, ip, metadata, created_at
FROM audit_logs WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the audit log. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	accountID := sql.NullString{String: a.AccountID, Valid: a.AccountID != ""}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx, queryCreate, a.ID, accountID, a.Action, a.IP, meta, a.CreatedAt)
	return err
}

// ListByAccount returns the newest entries for accountID, at most limit.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, queryListByAccount, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var (
			a    domain.AuditLog
			acc  sql.NullString
			meta sql.NullString
		)
		if err := rows.Scan(&a.ID, &acc, &a.Action, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.AccountID = acc.String
		a.Metadata = meta.String
		out = append(out, &a)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
