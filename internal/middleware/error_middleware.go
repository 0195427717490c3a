package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/krswitch/backend/internal/app/models/dto"
	"github.com/krswitch/backend/internal/pkg/apperrors"
)

// HandleAPIError maps a service error to its HTTP response. Every failed
// precondition surfaces as exactly one taxonomy member; anything unmapped is
// an internal error.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	c.JSON(status, dto.APIResponse{
		Error:     detail,
		Timestamp: time.Now(),
	})
}

func classify(err error) (int, *dto.ErrorDetail) {
	message := userMessage(err)

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return 400, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return 403, dto.NewErrorDetail(dto.ErrorCodeForbidden, message)
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrOfferNotFound),
		errors.Is(err, apperrors.ErrSectionNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		return 404, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)
	case errors.Is(err, apperrors.ErrConflict):
		return 409, dto.NewErrorDetail(dto.ErrorCodeResourceConflict, message)
	default:
		return 500, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// userMessage prefers the message attached by the service layer over the
// bare sentinel text
func userMessage(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return err.Error()
}
