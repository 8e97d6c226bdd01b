package members

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Handler wires HTTP endpoints for member management.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())

	req := ListMembersRequest{
		Search:      r.URL.Query().Get("search"),
		FaithStatus: r.URL.Query().Get("faith_status"),
	}
	if v := r.URL.Query().Get("cell_group_id"); v != "" {
		req.CellGroupID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("tag_id"); v != "" {
		req.TagID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("page"); v != "" {
		req.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		req.PerPage, _ = strconv.Atoi(v)
	}

	out, total, err := h.service.List(r.Context(), user, req)
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"members":    out,
		"pagination": shared.NewPagination(req.Page, req.PerPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMemberRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateMemberRequest
	if err := httpx.DecodeValid(r, h.validate, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, err := h.service.Update(r.Context(), user, id, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
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

func (h *Handler) recomputeTags(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	m, outcomes, err := h.service.RecomputeTags(r.Context(), user, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"member": m, "outcomes": outcomes})
}

func (h *Handler) previewTags(w http.ResponseWriter, r *http.Request) {
	user, _ := shared.UserFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, outcomes, err := h.service.PreviewTags(r.Context(), user, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tag_ids": result, "outcomes": outcomes})
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
