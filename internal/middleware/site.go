package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/response"
	"github.com/thatlq1812/sitetools/internal/service"
)

// Paths that stay reachable under maintenance and forced acceptance
var alwaysAllowed = []string{"/health", "/metrics", "/robots.txt"}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Maintenance answers 503 for every path outside the whitelist
func Maintenance(whitelist []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if hasPrefix(path, alwaysAllowed) || hasPrefix(path, whitelist) {
			c.Next()
			return
		}

		c.Header("Retry-After", "3600")
		response.Error(c, http.StatusServiceUnavailable, response.CodeServiceUnavailable, "Service temporarily unavailable")
	}
}

// ForcedAcceptanceConfig selects the document every authenticated actor must accept
type ForcedAcceptanceConfig struct {
	DocumentID string
	// 0 means the latest version
	Version   int64
	Whitelist []string
}

// ForcedAcceptance redirects authenticated actors who have not accepted the forced
// document version to its confirmation page, returning them to the requested URI afterwards.
func ForcedAcceptance(
	cfg ForcedAcceptanceConfig,
	resolver service.VersionResolver,
	acceptances service.AcceptanceService,
	log *logger.Logger,
	m *metrics.Metrics,
) gin.HandlerFunc {
	exempt := append([]string{"/legal/"}, alwaysAllowed...)
	exempt = append(exempt, cfg.Whitelist...)

	var version *int64
	if cfg.Version > 0 {
		version = &cfg.Version
	}

	return func(c *gin.Context) {
		actor := GetActor(c)
		if !actor.Authenticated || hasPrefix(c.Request.URL.Path, exempt) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := resolver.Resolve(ctx, cfg.DocumentID, version)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Misconfigured forced document: let traffic through
				log.Warn().Err(err).Str("document", cfg.DocumentID).Msg("forced legal document not found")
				c.Next()
				return
			}
			response.FromError(c, err)
			return
		}

		accepted, err := acceptances.HasAccepted(ctx, actor.ID, res.Version.ID)
		if err != nil {
			response.FromError(c, err)
			return
		}
		if accepted {
			c.Next()
			return
		}

		m.RecordRedirect("forced_acceptance")
		c.Redirect(http.StatusFound, domain.AcceptURL(res.Document.ID, res.Version.Version, c.Request.URL.RequestURI()))
		c.Abort()
	}
}
