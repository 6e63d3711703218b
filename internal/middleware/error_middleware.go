package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/pkg/apperrors"
)

func respondError(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// HandleAPIError maps application errors to HTTP responses. Domain errors
// carry their own messages (which services phrase for the client); everything
// unrecognized collapses to a 500.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	// Authentication
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrTokenRevoked):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respondError(c, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respondError(c, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrAccountNotApproved):
		respondError(c, http.StatusForbidden, dto.ErrorCodeAccountNotApproved, "Account is awaiting approval")

	// Authorization
	case errors.Is(err, apperrors.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, dto.ErrorCodeForbidden, err.Error())

	// Not found
	case errors.Is(err, apperrors.ErrEventNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Event not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrParticipantNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Participant not found")
	case errors.Is(err, apperrors.ErrManualParticipantNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Manual participant not found")
	case errors.Is(err, apperrors.ErrPostNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Post not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		respondError(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found")

	// Conflicts
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		respondError(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrAlreadyJoined):
		respondError(c, http.StatusConflict, dto.ErrorCodeConflict, "Already joined this event")
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, dto.ErrorCodeConflict, err.Error())

	// Event domain rules
	case errors.Is(err, apperrors.ErrRegistrationClosed):
		respondError(c, http.StatusConflict, dto.ErrorCodeRegistrationClosed, "Registration is closed for this event")
	case errors.Is(err, apperrors.ErrEventFull):
		respondError(c, http.StatusConflict, dto.ErrorCodeEventFull, "Event is full")
	case errors.Is(err, apperrors.ErrInvalidTransition):
		respondError(c, http.StatusConflict, dto.ErrorCodeInvalidTransition, err.Error())
	case errors.Is(err, apperrors.ErrServiceLocked):
		respondError(c, http.StatusConflict, dto.ErrorCodeServiceLocked, err.Error())

	// Validation
	case errors.Is(err, apperrors.ErrMissingServiceChoice),
		errors.Is(err, apperrors.ErrNoteTooLong),
		errors.Is(err, apperrors.ErrValidationFailed):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, err.Error())
	case errors.Is(err, apperrors.ErrBadRequest):
		respondError(c, http.StatusBadRequest, dto.ErrorCodeInvalidRequest, err.Error())

	default:
		respondError(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error")
	}
}
