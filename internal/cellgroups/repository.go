package cellgroups

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*CellGroup, error)
	List(ctx context.Context) ([]CellGroup, error)
	Create(ctx context.Context, g CellGroup) (int64, error)
	Update(ctx context.Context, g CellGroup) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, name, description, COALESCE(leader_member_id, 0), meeting_day, location, status, version, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*CellGroup, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM cell_groups WHERE id = $1`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context) ([]CellGroup, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM cell_groups WHERE status <> 'deleted' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CellGroup
	for rows.Next() {
		g, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, g CellGroup) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cell_groups (name, description, leader_member_id, meeting_day, location, status, version, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5, $6, 1, NOW(), NOW())
		RETURNING id`,
		g.Name, g.Description, g.LeaderMemberID, g.MeetingDay, g.Location, g.Status).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, g CellGroup) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE cell_groups
		SET name = $2, description = $3, leader_member_id = NULLIF($4, 0), meeting_day = $5,
		    location = $6, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $7`,
		g.ID, g.Name, g.Description, g.LeaderMemberID, g.MeetingDay, g.Location, g.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cell_groups WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return shared.ErrVersionConflict
		}
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE cell_groups SET status = 'deleted', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status <> 'deleted'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (*CellGroup, error) {
	var g CellGroup
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.LeaderMemberID, &g.MeetingDay,
		&g.Location, &g.Status, &g.Version, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}
