package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler renders the last error a handler attached with c.Error into the response envelope.
// Stacks are included only when debug is set.
func ErrorHandler(debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message, fields := describe(err)

		body := &models.ErrorBody{Status: status, Fields: fields}
		if debug {
			body.Stack = stackOf(err)
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("requestId", GetRequestID(c)).Str("stack", stackOf(err)).Msg("Request failed")
		}

		c.JSON(status, models.Response{
			Success: false,
			Data:    nil,
			Message: message,
			Error:   body,
		})
	}
}

func describe(err error) (int, string, map[string]string) {
	var verrs validator.ValidationErrors
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, "validation failed", fieldErrors(verrs)
	case errors.As(err, &appErr):
		return appErr.Status, appErr.Error(), nil
	case repositories.IsNotFound(err):
		return http.StatusNotFound, "resource not found", nil
	case repositories.IsDuplicate(err):
		return http.StatusConflict, "resource already exists", nil
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}

func stackOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Stack()
	}
	return fmt.Sprintf("%+v", err)
}
