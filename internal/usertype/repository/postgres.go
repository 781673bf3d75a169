package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"storefront-auth/backend/internal/usertype/domain"
)

const pgUniqueViolation = "23505"

const (
	queryInsert = `INSERT INTO user_types (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT DO NOTHING`
	queryList = `SELECT id, name, created_at, updated_at FROM user_types ORDER BY created_at, name`
)

// PostgresRepository stores user types in the user_types table.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert relies on the unique index over lower(name); a skipped row means the name was taken.
func (r *PostgresRepository) Insert(ctx context.Context, ut *domain.UserType) error {
	res, err := r.db.ExecContext(ctx, queryInsert, ut.ID, ut.Name, ut.CreatedAt, ut.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateName
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateName
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*domain.UserType, error) {
	rows, err := r.db.QueryContext(ctx, queryList)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.UserType
	for rows.Next() {
		var ut domain.UserType
		if err := rows.Scan(&ut.ID, &ut.Name, &ut.CreatedAt, &ut.UpdatedAt); err != nil {
			return nil, err
		}
		ut.CreatedAt = ut.CreatedAt.UTC()
		ut.UpdatedAt = ut.UpdatedAt.UTC()
		out = append(out, &ut)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
