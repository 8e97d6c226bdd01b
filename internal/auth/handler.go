package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/koinonia-app/koinonia/internal/platform/httpx"
	"github.com/koinonia-app/koinonia/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountPublicRoutes registers unauthenticated auth routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
}

// MountRoutes registers token-protected auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/refresh", h.refresh)
	r.Post("/auth/password", h.changePassword)
	r.Get("/auth/me", h.me)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("login rejected", slog.String("email", req.Email))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	claims, err := h.service.VerifyToken(raw)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	session, err := h.service.Refresh(r.Context(), claims)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrAuthenticationFailed)
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, validationError(err))
		return
	}
	if err := h.service.ChangePassword(r.Context(), user.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrAuthenticationFailed)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":              user.UserID,
		"member_id":            user.MemberID,
		"email":                user.Email,
		"role":                 user.Role,
		"permissions":          user.Permissions,
		"must_change_password": user.MustChangePassword,
	})
}

func validationError(err error) error {
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed " + fe.Tag() + " validation"
		}
	}
	return &shared.ValidationError{Fields: fields}
}
