package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// Repository provides PostgreSQL backed member persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*Member, error)
	List(ctx context.Context, req ListMembersRequest) ([]Member, int, error)
	ListActiveIDs(ctx context.Context) ([]int64, error)
	Create(ctx context.Context, m Member) (int64, error)
	Update(ctx context.Context, m Member) error
	UpdateTags(ctx context.Context, id int64, tags string) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const memberColumns = `id, first_name, last_name, email, phone, address, city, gender,
	birth_date, join_date, faith_status, COALESCE(cell_group_id, 0), tags,
	health_notes, notes, status, version, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	return scanMember(row)
}

func (r *repository) List(ctx context.Context, req ListMembersRequest) ([]Member, int, error) {
	conditions := []string{"status <> 'deleted'"}
	var args []any
	argPos := 1

	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, pattern)
		argPos++
	}
	if req.FaithStatus != "" {
		conditions = append(conditions, fmt.Sprintf("faith_status = $%d", argPos))
		args = append(args, req.FaithStatus)
		argPos++
	}
	if req.CellGroupID != 0 {
		conditions = append(conditions, fmt.Sprintf("cell_group_id = $%d", argPos))
		args = append(args, req.CellGroupID)
		argPos++
	}
	if req.TagID != 0 {
		conditions = append(conditions, fmt.Sprintf("string_to_array(NULLIF(tags, ''), ',')::bigint[] @> ARRAY[$%d::bigint]", argPos))
		args = append(args, req.TagID)
		argPos++
	}

	where := "WHERE " + conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM members "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT %s FROM members %s ORDER BY last_name, first_name LIMIT $%d OFFSET $%d`,
		memberColumns, where, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	return out, total, rows.Err()
}

func (r *repository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM members WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *repository) Create(ctx context.Context, m Member) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO members (first_name, last_name, email, phone, address, city, gender,
			birth_date, join_date, faith_status, cell_group_id, tags, health_notes, notes,
			status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, 0), $12, $13, $14, $15, 1, NOW(), NOW())
		RETURNING id`,
		m.FirstName, m.LastName, m.Email, m.Phone, m.Address, m.City, m.Gender,
		m.BirthDate, m.JoinDate, m.FaithStatus, m.CellGroupID, m.Tags, m.HealthNotes, m.Notes,
		m.Status).Scan(&id)
	return id, err
}

func (r *repository) Update(ctx context.Context, m Member) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE members
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6,
		    city = $7, gender = $8, birth_date = $9, join_date = $10, faith_status = $11,
		    cell_group_id = NULLIF($12, 0), tags = $13, health_notes = $14, notes = $15,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $16`,
		m.ID, m.FirstName, m.LastName, m.Email, m.Phone, m.Address,
		m.City, m.Gender, m.BirthDate, m.JoinDate, m.FaithStatus,
		m.CellGroupID, m.Tags, m.HealthNotes, m.Notes, m.Version)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.versionOrNotFound(ctx, m.ID)
	}
	return nil
}

func (r *repository) UpdateTags(ctx context.Context, id int64, tags string) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE members SET tags = $2, version = version + 1, updated_at = NOW() WHERE id = $1`, id, tags)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE members SET status = 'deleted', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status <> 'deleted'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) versionOrNotFound(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return shared.ErrVersionConflict
	}
	return shared.ErrNotFound
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var birthDate, joinDate pgtype.Date
	var healthNotes pgtype.Text
	err := row.Scan(
		&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Address, &m.City, &m.Gender,
		&birthDate, &joinDate, &m.FaithStatus, &m.CellGroupID, &m.Tags,
		&healthNotes, &m.Notes, &m.Status, &m.Version, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if birthDate.Valid {
		t := birthDate.Time
		m.BirthDate = &t
	}
	if joinDate.Valid {
		t := joinDate.Time
		m.JoinDate = &t
	}
	if healthNotes.Valid {
		v := healthNotes.String
		m.HealthNotes = &v
	}
	return &m, nil
}
