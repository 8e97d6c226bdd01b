// Package settings implements the site settings key/value store.
package settings

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Setting is one configuration entry. Keys are dotted lowercase paths
// such as "site.name" or "contact.email".
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy int64     `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, s Setting) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.pool.QueryRow(ctx,
		`SELECT key, value, COALESCE(updated_by, 0), updated_at FROM settings WHERE key = $1`, key).
		Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Setting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT key, value, COALESCE(updated_by, 0), updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Upsert(ctx context.Context, s Setting) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, NULLIF($3, 0), NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_by = NULLIF($3, 0), updated_at = NOW()`,
		s.Key, s.Value, s.UpdatedBy)
	return err
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]Setting, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	return s.repo.Get(ctx, key)
}

// Set validates the key shape and upserts the value, recording who
// changed it.
func (s *Service) Set(ctx context.Context, user shared.UserContext, key, value string) (*Setting, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !keyPattern.MatchString(key) {
		return nil, shared.NewValidationError("key", "must be a dotted lowercase path such as site.name")
	}
	if err := s.repo.Upsert(ctx, Setting{Key: key, Value: value, UpdatedBy: user.UserID}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, key)
}

type setRequest struct {
	Value string `json:"value" validate:"max=5000"`
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermSettingsRead))
		r.Get("/settings", h.list)
		r.Get("/settings/{key}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermSettingsUpdate))
		r.Put("/settings/{key}", h.set)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	var req setRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	setting, err := h.service.Set(r.Context(), user, chi.URLParam(r, "key"), req.Value)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, setting)
}
