package httpx

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/koinonia-app/koinonia/internal/shared"
)

// DecodeValid decodes the JSON body into target and runs struct
// validation, returning a shared.ValidationError with a field map on
// failure.
func DecodeValid(r *http.Request, validate *validator.Validate, target any) error {
	if err := DecodeJSON(r, target); err != nil {
		return shared.NewValidationError("body", "malformed JSON body")
	}
	if err := validate.Struct(target); err != nil {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = "failed " + fe.Tag() + " validation"
			}
		}
		return &shared.ValidationError{Fields: fields}
	}
	return nil
}
