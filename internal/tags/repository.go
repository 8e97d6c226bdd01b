package tags

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Repository provides PostgreSQL backed persistence for tags and rules.
type Repository interface {
	GetTag(ctx context.Context, id int64) (*Tag, error)
	ListTags(ctx context.Context, includeDeleted bool) ([]Tag, error)
	CreateTag(ctx context.Context, tag Tag) (int64, error)
	UpdateTag(ctx context.Context, tag Tag) error
	SoftDeleteTag(ctx context.Context, id int64) error

	GetRule(ctx context.Context, id int64) (*Rule, error)
	ListRules(ctx context.Context, includeDeleted bool) ([]Rule, error)
	CreateRule(ctx context.Context, rule Rule) (int64, error)
	UpdateRule(ctx context.Context, rule Rule) error
	SoftDeleteRule(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const tagColumns = `id, name, category, color, description, status, version, created_at, updated_at`

func (r *repository) GetTag(ctx context.Context, id int64) (*Tag, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = $1`, id)
	return scanTag(row)
}

func (r *repository) ListTags(ctx context.Context, includeDeleted bool) ([]Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags`
	if !includeDeleted {
		query += ` WHERE status <> 'deleted'`
	}
	query += ` ORDER BY category, name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tag)
	}
	return out, rows.Err()
}

func (r *repository) CreateTag(ctx context.Context, tag Tag) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tags (name, category, color, description, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, NOW(), NOW())
		RETURNING id`,
		tag.Name, tag.Category, tag.Color, tag.Description, tag.Status).Scan(&id)
	return id, err
}

func (r *repository) UpdateTag(ctx context.Context, tag Tag) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tags
		SET name = $2, category = $3, color = $4, description = $5, status = $6,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $7`,
		tag.ID, tag.Name, tag.Category, tag.Color, tag.Description, tag.Status, tag.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return versionOrNotFound(ctx, r.pool, "tags", tag.ID)
	}
	return nil
}

func (r *repository) SoftDeleteTag(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tags SET status = 'deleted', version = version + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const ruleColumns = `id, name, tag_id, condition_type, condition_field, condition_operator, condition_value, priority, status, version, created_at, updated_at`

func (r *repository) GetRule(ctx context.Context, id int64) (*Rule, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM tag_rules WHERE id = $1`, id)
	return scanRule(row)
}

func (r *repository) ListRules(ctx context.Context, includeDeleted bool) ([]Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM tag_rules`
	if !includeDeleted {
		query += ` WHERE status <> 'deleted'`
	}
	query += ` ORDER BY priority, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rule)
	}
	return out, rows.Err()
}

func (r *repository) CreateRule(ctx context.Context, rule Rule) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tag_rules (name, tag_id, condition_type, condition_field, condition_operator, condition_value, priority, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW())
		RETURNING id`,
		rule.Name, rule.TagID, rule.ConditionType, rule.ConditionField,
		rule.ConditionOperator, rule.ConditionValue, rule.Priority, rule.Status).Scan(&id)
	return id, err
}

func (r *repository) UpdateRule(ctx context.Context, rule Rule) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tag_rules
		SET name = $2, tag_id = $3, condition_type = $4, condition_field = $5,
		    condition_operator = $6, condition_value = $7, priority = $8, status = $9,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $10`,
		rule.ID, rule.Name, rule.TagID, rule.ConditionType, rule.ConditionField,
		rule.ConditionOperator, rule.ConditionValue, rule.Priority, rule.Status, rule.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return versionOrNotFound(ctx, r.pool, "tag_rules", rule.ID)
	}
	return nil
}

func (r *repository) SoftDeleteRule(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tag_rules SET status = 'deleted', version = version + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTag(row pgx.Row) (*Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Name, &t.Category, &t.Color, &t.Description, &t.Status, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func scanRule(row pgx.Row) (*Rule, error) {
	var rule Rule
	err := row.Scan(&rule.ID, &rule.Name, &rule.TagID, &rule.ConditionType, &rule.ConditionField,
		&rule.ConditionOperator, &rule.ConditionValue, &rule.Priority, &rule.Status,
		&rule.Version, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// versionOrNotFound distinguishes a stale version from a missing row
// after a guarded update matched nothing.
func versionOrNotFound(ctx context.Context, pool *pgxpool.Pool, table string, id int64) error {
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return shared.ErrVersionConflict
	}
	return shared.ErrNotFound
}
