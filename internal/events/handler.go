package events

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

// MountPublicRoutes registers the unauthenticated upcoming listing.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/events/upcoming", h.upcoming)
}

// MountRoutes registers authenticated event routes.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermEventsRead))
		r.Get("/events", h.list)
		r.Get("/events/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermEventsCreate))
		r.Post("/events", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermEventsUpdate))
		r.Put("/events/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermEventsDelete))
		r.Delete("/events/{id}", h.remove)
	})
}

func (h *Handler) upcoming(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	out, err := h.service.Upcoming(r.Context(), limit)
	if err != nil {
		h.logger.Error("list upcoming events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": out})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create event", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateEventRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
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
