package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"storefront-auth/backend/internal/account/domain"
	"storefront-auth/backend/internal/otp"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const accountColumns = `id, email, name, password_hash, is_verified, otp_hash, otp_expires_at, created_at, updated_at`

const (
	queryFindByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	queryFindByID    = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	queryInsert      = `INSERT INTO accounts (` + accountColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (email) DO NOTHING`
	queryUpdate = `UPDATE accounts
SET name = $2, password_hash = $3, is_verified = $4, otp_hash = $5, otp_expires_at = $6, updated_at = $7
WHERE id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByEmail returns the account with the given normalized email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, queryFindByEmail, email)
}

// FindByID returns the account for id, or nil if not found.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, queryFindByID, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query, arg string) (*domain.Account, error) {
	var (
		a         domain.Account
		otpHash   sql.NullString
		otpExpiry sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.IsVerified,
		&otpHash, &otpExpiry, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if otpHash.Valid && otpExpiry.Valid {
		a.OTP = &otp.Challenge{CodeHash: otpHash.String, ExpiresAt: otpExpiry.Time.UTC()}
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

// Insert persists a new account. The account must have ID set. ON CONFLICT makes the
// existence check and the write a single statement, so concurrent sign-ups for the same
// email produce exactly one row.
func (r *PostgresRepository) Insert(ctx context.Context, a *domain.Account) error {
	otpHash, otpExpiry := otpColumns(a.OTP)
	res, err := r.db.ExecContext(ctx, queryInsert,
		a.ID, a.Email, a.Name, a.PasswordHash, a.IsVerified,
		otpHash, otpExpiry, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

// Update writes the mutable columns of an existing account.
func (r *PostgresRepository) Update(ctx context.Context, a *domain.Account) error {
	otpHash, otpExpiry := otpColumns(a.OTP)
	res, err := r.db.ExecContext(ctx, queryUpdate,
		a.ID, a.Name, a.PasswordHash, a.IsVerified, otpHash, otpExpiry, a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func otpColumns(ch *otp.Challenge) (sql.NullString, sql.NullTime) {
	if ch == nil {
		return sql.NullString{}, sql.NullTime{}
	}
	return sql.NullString{String: ch.CodeHash, Valid: true}, sql.NullTime{Time: ch.ExpiresAt, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var _ Repository = (*PostgresRepository)(nil)
