package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/service"
)

// GinLogger middleware ghi log cho mỗi request
func GinLogger(log *logger.Logger) gin.HandlerFunc {
	httpLog := log.HTTPLogger()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		httpLog.LogRequest(
			c.Request.Method,
			path,
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(start),
			c.Writer.Size(),
			c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}

// Metrics records request counts and latency by route template
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, fmt.Sprint(c.Writer.Status()), time.Since(start))
	}
}

// SiteLogErrors writes server errors attached to the context into the site log
func SiteLogErrors(logs service.SiteLogService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusInternalServerError || len(c.Errors) == 0 {
			return
		}

		data, _ := json.Marshal(map[string]any{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"client_ip": c.ClientIP(),
		})

		// The request may already be cancelled; the entry must still be written
		ctx := context.WithoutCancel(c.Request.Context())
		_, err := logs.Log(ctx, domain.CreateSiteLogParams{
			Level:   domain.LogLevelError,
			Message: c.Errors.Last().Error(),
			Data:    data,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to write site log")
		}
	}
}
