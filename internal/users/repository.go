package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Repository provides PostgreSQL backed persistence. There is no
// delete: accounts are disabled via Update.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u User, passwordHash string) (int64, error)
	Update(ctx context.Context, u User) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, email, role, COALESCE(permission_overrides, '{}'), COALESCE(member_id, 0),
	status, must_change_password, email_verified, last_login_at, version, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id))
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	return exists, err
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, u User, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, permission_overrides, member_id, status,
			must_change_password, email_verified, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0), $6, $7, false, 1, NOW(), NOW())
		RETURNING id`,
		u.Email, passwordHash, u.Role, u.PermissionOverrides, u.MemberID, u.Status, u.MustChangePassword).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, u User) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE users
		SET role = $2, permission_overrides = $3, member_id = NULLIF($4, 0), status = $5,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6`,
		u.ID, u.Role, u.PermissionOverrides, u.MemberID, u.Status, u.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, u.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return shared.ErrVersionConflict
		}
		return shared.ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Role, &u.PermissionOverrides, &u.MemberID,
		&u.Status, &u.MustChangePassword, &u.EmailVerified, &u.LastLoginAt,
		&u.Version, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
