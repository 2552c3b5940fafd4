package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"orderdesk/internal/backend"
	"orderdesk/internal/domain"
	"orderdesk/internal/errx"
	"orderdesk/internal/logx"
	"orderdesk/internal/validation"
)

const sessionExpiredMessage = "Your session has expired. Please sign in again."

// writeError maps err onto a status and body. Unauthorized errors also sign
// the session out so the client can follow the redirect.
func (h *handlers) writeError(c *gin.Context, err error) {
	var (
		fieldErrs *validation.FieldErrors
		apiErr    *backend.APIError
		appErr    *errx.AppError
	)
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": domain.ErrValidation.Error(), "fields": fieldErrs.Fields})

	case errors.Is(err, domain.ErrUnauthorized):
		redirect, signOutErr := workspaceFrom(c).Session.SignOut(c.Request.Context())
		if signOutErr != nil {
			logx.Error().Err(signOutErr).Msg("sign out after unauthorized response failed")
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    backend.UserMessage(err, sessionExpiredMessage),
			"redirect": redirect,
		})

	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "fields": gin.H{}})

	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		logx.Warn().Err(err).Int("backendStatus", apiErr.Status).Msg("backend rejected request")
		c.JSON(status, gin.H{"error": backend.UserMessage(err, h.fallback)})

	case errors.As(err, &appErr):
		logx.Error().Err(err).Int("status", appErr.Status).Msg("request failed")
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})

	case errors.Is(err, context.DeadlineExceeded):
		logx.Error().Err(err).Msg("request timed out")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": h.fallback})

	default:
		logx.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.fallback})
	}
}
