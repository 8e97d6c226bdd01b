package roles

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Repository provides PostgreSQL backed persistence. It also serves as
// the rbac resolver's role source via FindPermissionsByRole.
type Repository interface {
	Get(ctx context.Context, id int64) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Create(ctx context.Context, role Role) (int64, error)
	Update(ctx context.Context, role Role) error
	Delete(ctx context.Context, id int64) error
	FindPermissionsByRole(ctx context.Context, name string) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, description, permissions, is_system, version, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Role, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM roles WHERE id = $1`, id))
}

func (r *repository) GetByName(ctx context.Context, name string) (*Role, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM roles WHERE LOWER(name) = LOWER($1)`, name))
}

func (r *repository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM roles ORDER BY is_system DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Role
	for rows.Next() {
		role, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, role Role) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, permissions, is_system, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW(), NOW())
		RETURNING id`,
		role.Name, role.Description, role.Permissions, role.IsSystem).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, role Role) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE roles
		SET name = $2, description = $3, permissions = $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $5`,
		role.ID, role.Name, role.Description, role.Permissions, role.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, role.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return shared.ErrVersionConflict
		}
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1 AND NOT is_system`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindPermissionsByRole implements rbac.RoleSource.
func (r *repository) FindPermissionsByRole(ctx context.Context, name string) ([]string, error) {
	var perms []string
	err := r.pool.QueryRow(ctx,
		`SELECT permissions FROM roles WHERE LOWER(name) = LOWER($1)`, strings.TrimSpace(name)).Scan(&perms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}

func scan(row pgx.Row) (*Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Permissions,
		&role.IsSystem, &role.Version, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if role.Permissions == nil {
		role.Permissions = []string{}
	}
	return &role, nil
}
