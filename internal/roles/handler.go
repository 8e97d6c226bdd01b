package roles

import (
	"log/slog"
	"net/http"
	"strconv"

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

// MountRoutes registers role routes behind the roles permissions.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermRolesRead))
		r.Get("/roles", h.list)
		r.Get("/roles/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermRolesCreate))
		r.Post("/roles", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermRolesUpdate))
		r.Put("/roles/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermRolesDelete))
		r.Delete("/roles/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRoleRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
