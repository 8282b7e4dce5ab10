package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/crowdfund-api/pkg/apperror"
	"github.com/crowdfund-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the context. It is the only
// place where error kinds become HTTP statuses.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}

		status := StatusFor(appErr.Kind)
		if status == http.StatusInternalServerError {
			Logger().Error("request failed",
				slog.String("request_id", GetRequestID(c)),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
			response.Error(c, status, string(apperror.KindInternal), "internal server error", nil)
			return
		}

		response.Error(c, status, string(appErr.Kind), appErr.Message, appErr.Fields)
	}
}

// StatusFor maps an error kind to its HTTP status
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindAuthorization:
		return http.StatusBadRequest
	case apperror.KindAuthentication:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
