package offerings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (*Offering, error)
	List(ctx context.Context, req ListOfferingsRequest) ([]Offering, int, error)
	Summary(ctx context.Context, from, to *time.Time) ([]FundTotal, error)
	Create(ctx context.Context, o Offering) (int64, error)
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const columns = `id, fund, amount_cents, given_at, COALESCE(member_id, 0), note, recorded_by, created_at`

func (r *repository) Get(ctx context.Context, id int64) (*Offering, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM offerings WHERE id = $1 AND deleted_at IS NULL`, id)
	return scan(row)
}

func (r *repository) List(ctx context.Context, req ListOfferingsRequest) ([]Offering, int, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}
	idx := 1
	if req.Fund != "" {
		where = append(where, fmt.Sprintf("fund = $%d", idx))
		args = append(args, req.Fund)
		idx++
	}
	if req.From != nil {
		where = append(where, fmt.Sprintf("given_at >= $%d", idx))
		args = append(args, *req.From)
		idx++
	}
	if req.To != nil {
		where = append(where, fmt.Sprintf("given_at <= $%d", idx))
		args = append(args, *req.To)
		idx++
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offerings WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, perPage := req.Page, req.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM offerings WHERE %s ORDER BY given_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		columns, clause, idx, idx+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *repository) Summary(ctx context.Context, from, to *time.Time) ([]FundTotal, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}
	idx := 1
	if from != nil {
		where = append(where, fmt.Sprintf("given_at >= $%d", idx))
		args = append(args, *from)
		idx++
	}
	if to != nil {
		where = append(where, fmt.Sprintf("given_at <= $%d", idx))
		args = append(args, *to)
		idx++
	}
	query := `SELECT fund, COALESCE(SUM(amount_cents), 0), COUNT(*) FROM offerings WHERE ` +
		strings.Join(where, " AND ") + ` GROUP BY fund ORDER BY fund`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FundTotal
	for rows.Next() {
		var t FundTotal
		if err := rows.Scan(&t.Fund, &t.TotalCents, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Create(ctx context.Context, o Offering) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO offerings (fund, amount_cents, given_at, member_id, note, recorded_by, created_at)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, NOW())
		RETURNING id`,
		o.Fund, o.AmountCents, o.GivenAt, o.MemberID, o.Note, o.RecordedBy).Scan(&id)
	return id, err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE offerings SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scan(row pgx.Row) (*Offering, error) {
	var o Offering
	err := row.Scan(&o.ID, &o.Fund, &o.AmountCents, &o.GivenAt, &o.MemberID, &o.Note, &o.RecordedBy, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
