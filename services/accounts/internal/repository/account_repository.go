package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountRepository interface {
	// FindVerified returns any verified account matching email or phone, or nil.
	FindVerified(ctx context.Context, email, phone string) (*domain.Account, error)
	CountPending(ctx context.Context, email, phone string) (int, error)
	CreatePending(ctx context.Context, acc domain.NewAccount) (*domain.Account, error)
	// ReconcilePending keeps the newest unverified account for the identity and
	// deletes the rest, atomically. It returns a nil account when none exist.
	ReconcilePending(ctx context.Context, email, phone string) (*domain.Account, int, error)
	// MarkVerified promotes id only while it is unverified and still holds code.
	MarkVerified(ctx context.Context, id, code string) error
	DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error)
}

const (
	queryTimeout = 3 * time.Second

	uniqueViolation = "23505"
)

type accountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountCols = `id, name, email, phone, password_hash, verified, otp_code, otp_expires_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Phone, &a.PasswordHash, &a.Verified,
		&a.OTPCode, &a.OTPExpiresAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) FindVerified(ctx context.Context, email, phone string) (*domain.Account, error) {
	const q = `
		SELECT ` + accountCols + `
		FROM accounts
		WHERE verified = true AND (lower(email) = lower($1) OR phone = $2)
		LIMIT 1`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q, email, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find verified account: %w", err)
	}
	return a, nil
}

func (r *accountRepository) CountPending(ctx context.Context, email, phone string) (int, error) {
	const q = `
		SELECT count(*)
		FROM accounts
		WHERE verified = false AND (lower(email) = lower($1) OR phone = $2)`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var n int
	if err := r.pool.QueryRow(ctx, q, email, phone).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending accounts: %w", err)
	}
	return n, nil
}

func (r *accountRepository) CreatePending(ctx context.Context, acc domain.NewAccount) (*domain.Account, error) {
	const q = `
		INSERT INTO accounts (name, email, phone, password_hash, verified, otp_code, otp_expires_at)
		VALUES ($1, $2, $3, $4, false, $5, $6)
		RETURNING ` + accountCols

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	a, err := scanAccount(r.pool.QueryRow(ctx, q,
		acc.Name, acc.Email, acc.Phone, acc.PasswordHash, acc.OTPCode, acc.OTPExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create pending account: %w", err)
	}
	return a, nil
}

func (r *accountRepository) ReconcilePending(ctx context.Context, email, phone string) (*domain.Account, int, error) {
	const sel = `
		SELECT ` + accountCols + `
		FROM accounts
		WHERE verified = false AND (lower(email) = lower($1) OR phone = $2)
		ORDER BY created_at DESC, id DESC
		FOR UPDATE`
	const del = `DELETE FROM accounts WHERE id = ANY($1::uuid[]) AND verified = false`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin reconcile: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, sel, email, phone)
	if err != nil {
		return nil, 0, fmt.Errorf("load pending accounts: %w", err)
	}
	var pending []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan pending account: %w", err)
		}
		pending = append(pending, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate pending accounts: %w", err)
	}
	if len(pending) == 0 {
		return nil, 0, nil
	}

	canonical := pending[0]
	removed := 0
	if len(pending) > 1 {
		ids := make([]string, 0, len(pending)-1)
		for _, a := range pending[1:] {
			ids = append(ids, a.ID)
		}
		tag, err := tx.Exec(ctx, del, ids)
		if err != nil {
			return nil, 0, fmt.Errorf("delete duplicate pending accounts: %w", err)
		}
		removed = int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit reconcile: %w", err)
	}
	return canonical, removed, nil
}

func (r *accountRepository) MarkVerified(ctx context.Context, id, code string) error {
	const q = `
		UPDATE accounts
		SET verified = true, otp_code = NULL, otp_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND verified = false AND otp_code = $2`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, id, code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapError(domain.ErrAlreadyRegistered, domain.MsgAlreadyRegistered, err)
		}
		return fmt.Errorf("mark account verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrNotFound, domain.MsgUserNotFound)
	}
	return nil
}

func (r *accountRepository) DeleteStalePending(ctx context.Context, olderThan time.Time) (int64, error) {
	const q = `DELETE FROM accounts WHERE verified = false AND otp_expires_at < $1`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q, olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete stale pending accounts: %w", err)
	}
	return tag.RowsAffected(), nil
}
