package middleware

import (
	"github.com/go-playground/validator/v10"
	"github.com/matteo/veloclub/internal/app/models/dto"
)

// HandleValidationError turns a validator error into the standard error shape
func HandleValidationError(err error) *dto.ErrorDetail {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
	}

	first := validationErrors[0]
	return dto.NewErrorDetail(dto.ErrorCodeValidationFailed, formatValidationError(first)).
		WithField(first.Field())
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
