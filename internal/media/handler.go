package media

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/rbac"
	"github.com/koinonia-app/koinonia/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers media routes behind the media permissions.
func (h *Handler) MountRoutes(r chi.Router, guard rbac.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMediaRead))
		r.Get("/media", h.list)
		r.Get("/media/{id}/url", h.downloadURL)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMediaCreate))
		r.Post("/media", h.upload)
	})
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePermission(rbac.PermMediaDelete))
		r.Delete("/media/{id}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list media", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"media": out})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, shared.NewValidationError("file", "multipart field 'file' is required"))
		return
	}
	defer file.Close()

	item, err := h.service.Upload(r.Context(), user, header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		h.logger.Error("upload media", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) downloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	url, err := h.service.DownloadURL(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"url": url})
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
