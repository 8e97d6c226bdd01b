package httpx

import (
	"errors"
	"net/http"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Credential and token failures stay deliberately vague; authorization
// failures name the missing requirement for operator debugging.
func RespondError(w http.ResponseWriter, err error) {
	var ve *shared.ValidationError
	switch {
	case errors.As(err, &ve):
		ValidationProblem(w, ve.Fields)
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Invalid Credentials", "invalid credentials")
	case errors.Is(err, shared.ErrAccountDisabled):
		Problem(w, http.StatusForbidden, "Account Disabled", "account is not active")
	case errors.Is(err, shared.ErrAuthenticationFailed):
		Problem(w, http.StatusUnauthorized, "Authentication Failed", "authentication failed")
	case errors.Is(err, shared.ErrAuthorizationDenied):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrVersionConflict):
		Problem(w, http.StatusConflict, "Conflict", "record was modified by another request")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
