package events

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context) ([]Event, error)
	ListPublicUpcoming(ctx context.Context, after time.Time, limit int) ([]Event, error)
	Create(ctx context.Context, e Event) (int64, error)
	Update(ctx context.Context, e Event) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, title, description, location, starts_at, ends_at, is_public, status, version, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Event, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM events WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM events WHERE status <> 'deleted' ORDER BY starts_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) ListPublicUpcoming(ctx context.Context, after time.Time, limit int) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM events
		WHERE status <> 'deleted' AND is_public AND starts_at >= $1
		ORDER BY starts_at ASC
		LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) Create(ctx context.Context, e Event) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO events (title, description, location, starts_at, ends_at, is_public, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, NOW(), NOW())
		RETURNING id`,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.IsPublic, e.Status).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, e Event) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE events
		SET title = $2, description = $3, location = $4, starts_at = $5, ends_at = $6,
		    is_public = $7, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $8`,
		e.ID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.IsPublic, e.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, e.ID).Scan(&exists); err != nil {
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
		UPDATE events SET status = 'deleted', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status <> 'deleted'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collect(rows pgx.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &e.EndsAt,
		&e.IsPublic, &e.Status, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
