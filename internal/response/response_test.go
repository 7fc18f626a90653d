package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatlq1812/sitetools/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"Invalid input", fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest, CodeBadRequest},
		{"Unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"Not found", fmt.Errorf("document: %w", domain.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"Already exists", domain.ErrAlreadyExists, http.StatusConflict, CodeConflict},
		{"Version conflict", domain.ErrVersionConflict, http.StatusConflict, CodeConflict},
		{"Rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, CodeTooManyRequests},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestFromError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInternalError, body.Code)
	assert.Equal(t, "internal server error", body.Message)
	assert.Len(t, c.Errors, 1)
	assert.True(t, c.IsAborted())
}

func TestSuccessList_EmptyIsArray(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var items []string
	SuccessList(c, items)

	assert.JSONEq(t, `{"code":"000","message":"success","data":{"items":[],"total":0}}`, w.Body.String())
}
