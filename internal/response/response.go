package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/domain"
)

type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ListData struct {
	Items any `json:"items"`
	Total int `json:"total"`
}

// Success codes
const (
	CodeSuccess = "000"
	CodeCreated = "201"
)

// Error codes
const (
	CodeBadRequest         = "400"
	CodeUnauthorized       = "401"
	CodeNotFound           = "404"
	CodeConflict           = "409"
	CodeTooManyRequests    = "429"
	CodeInternalError      = "500"
	CodeServiceUnavailable = "503"
)

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeCreated,
		Message: message,
		Data:    data,
	})
}

// SuccessList wraps items with their count. A nil slice is sent as an empty list.
func SuccessList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	Success(c, ListData{Items: items, Total: len(items)})
}

func Error(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// FromError maps a service error to an HTTP response.
// Internal errors are attached to the gin context for the request logger.
func FromError(c *gin.Context, err error) {
	statusCode, code := MapError(err)
	message := err.Error()
	if statusCode == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal server error"
	}
	Error(c, statusCode, code, message)
}

// MapError converts domain sentinel errors to an HTTP status and response code
func MapError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, CodeTooManyRequests
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
