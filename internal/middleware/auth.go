package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/auth"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/response"
)

const (
	actorKey = "actor"

	// AdminKeyHeader carries the admin API key
	AdminKeyHeader = "X-Admin-Key"
)

// Identify kiểm tra JWT token trong Authorization header và lưu actor vào context.
// Không có token thì đi tiếp như anonymous; token sai thì trả 401.
func Identify(authn *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := authn.Authenticate(c.Request)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetActor returns the actor stored by Identify, or auth.Anonymous
func GetActor(c *gin.Context) auth.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(auth.Actor); ok {
			return actor
		}
	}
	return auth.Anonymous
}

// RequireActor rejects anonymous requests.
// With a login URL they are redirected there with next=<requested uri>, otherwise 401.
func RequireActor(loginURL string, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetActor(c).Authenticated {
			c.Next()
			return
		}

		if loginURL == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
			return
		}

		m.RecordRedirect("login")
		c.Redirect(http.StatusFound, withNext(loginURL, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// AdminOnly checks the admin API key header
func AdminOnly(key *auth.AdminKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := key.Verify(c.GetHeader(AdminKeyHeader)); err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid admin key")
			return
		}
		c.Next()
	}
}

// withNext appends next=<target> to base, keeping any query base already has
func withNext(base, target string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("next", target)
	u.RawQuery = q.Encode()
	return u.String()
}
