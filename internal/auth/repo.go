package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Repository provides account persistence for authentication flows.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `
	u.id, u.email, u.password_hash, u.role, u.permission_overrides,
	COALESCE(u.member_id, 0), COALESCE(m.cell_group_id, 0),
	u.status, u.must_change_password, u.email_verified,
	u.last_login_at, u.created_at, u.updated_at`

func (r *repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users u
		LEFT JOIN members m ON m.id = u.member_id
		WHERE u.email = $1`, email)
	return scanAccount(row)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM users u
		LEFT JOIN members m ON m.id = u.member_id
		WHERE u.id = $1`, id)
	return scanAccount(row)
}

func (r *repository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	return err
}

func (r *repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $2, must_change_password = FALSE, updated_at = NOW()
		WHERE id = $1`, id, hash)
	return err
}

func scanAccount(row pgx.Row) (*Account, error) {
	var acc Account
	var lastLogin pgtype.Timestamptz
	err := row.Scan(
		&acc.ID, &acc.Email, &acc.PasswordHash, &acc.Role, &acc.PermissionOverrides,
		&acc.MemberID, &acc.CellGroupID,
		&acc.Status, &acc.MustChangePassword, &acc.EmailVerified,
		&lastLogin, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		acc.LastLoginAt = &t
	}
	return &acc, nil
}
