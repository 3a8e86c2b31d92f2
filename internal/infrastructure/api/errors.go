package api

import (
	"net/http"

	"github.com/esnrhm/LinuxNetAPI/internal/domain/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps a domain error type to its HTTP status
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeValidation, errors.ErrorTypeNotPublic:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypePermission:
		return http.StatusForbidden
	case errors.ErrorTypeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) *ErrorResponse {
	return &ErrorResponse{Error: err.Error(), Code: string(errors.TypeOf(err))}
}

// abortWithError writes the error body and stops the handler chain
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), errorBody(err))
}
