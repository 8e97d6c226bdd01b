package media

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*MediaItem, error)
	List(ctx context.Context) ([]MediaItem, error)
	Create(ctx context.Context, item MediaItem) (int64, error)
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, file_name, object_key, content_type, size_bytes, uploaded_by, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*MediaItem, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM media_items WHERE id = $1 AND deleted_at IS NULL`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context) ([]MediaItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM media_items WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MediaItem
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, item MediaItem) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO media_items (file_name, object_key, content_type, size_bytes, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id`,
		item.FileName, item.ObjectKey, item.ContentType, item.SizeBytes, item.UploadedBy).Scan(&id)
	return id, err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE media_items SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (*MediaItem, error) {
	var item MediaItem
	err := row.Scan(&item.ID, &item.FileName, &item.ObjectKey, &item.ContentType,
		&item.SizeBytes, &item.UploadedBy, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
