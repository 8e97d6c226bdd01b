package offerings

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers offering routes. The summary carries raw
// totals so it is additionally gated at the staff rank.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermOfferingsRead))
		r.Get("/offerings", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermOfferingsRead))
		r.Use(guard.RequireMinimumRole(rbac.RoleStaff))
		r.Get("/offerings/summary", h.summary)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermOfferingsCreate))
		r.Post("/offerings", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermOfferingsDelete))
		r.Delete("/offerings/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())

	req := ListOfferingsRequest{Fund: r.URL.Query().Get("fund")}
	var err error
	if req.From, err = dateParam(r, "from"); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.To, err = dateParam(r, "to"); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if v := r.URL.Query().Get("page"); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		req.PerPage, _ = strconv.Atoi(v)
	}

	out, total, err := h.service.List(r.Context(), user, req)
	if err != nil {
		h.logger.Error("list offerings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"offerings":  out,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, err := dateParam(r, "from")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	totals, err := h.service.Summary(r.Context(), from, to)
	if err != nil {
		h.logger.Error("offerings summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"totals": totals})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	var req CreateOfferingRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	o, err := h.service.Create(r.Context(), user, req)
	if err != nil {
		h.logger.Error("create offering", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, o)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, shared.NewValidationError("id", "must be a positive integer"))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func dateParam(r *http.Request, name string) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, shared.NewValidationError(name, "must be YYYY-MM-DD")
	}
	return &t, nil
}
