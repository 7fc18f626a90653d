package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatlq1812/sitetools/internal/auth"
	"github.com/thatlq1812/sitetools/internal/config"
	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/middleware"
	"github.com/thatlq1812/sitetools/internal/repository/sqlite"
	"github.com/thatlq1812/sitetools/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testSecret   = "handler-secret"
	testAdminKey = "admin-key"
)

type testServer struct {
	router *gin.Engine
	store  *sqlite.Store
	authn  *auth.Authenticator
	docs   service.DocumentService
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: config.StorageConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "handler.db")},
		Auth: config.AuthConfig{
			JWTSecret:  testSecret,
			LoginURL:   "/accounts/login/",
			ProfileURL: "/accounts/profile/",
		},
		Legal:   config.LegalConfig{ForceWhitelist: []string{"/admin/"}},
		Contact: config.ContactConfig{MailAlert: false, RateLimit: 0.001, RateBurst: 1},
	}
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) *testServer {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}

	store, err := sqlite.Open(cfg.Storage.SQLitePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hash, err := auth.HashAdminKey(testAdminKey)
	require.NoError(t, err)

	log := logger.Nop()
	m := metrics.New()
	notifier := service.NewLogNotifier(log)
	docs := service.NewDocumentService(store)
	authn := auth.NewAuthenticator(cfg.Auth.JWTSecret)

	router, err := NewRouter(Deps{
		Config:        cfg,
		Log:           log,
		Metrics:       m,
		Store:         store,
		Authenticator: authn,
		AdminKey:      auth.NewAdminKey(hash),
		Resolver:      service.NewVersionResolver(store, service.ResolverOptions{ShowPreviousVersions: cfg.Legal.ShowPreviousVersions}, m),
		Documents:     docs,
		Acceptances:   service.NewAcceptanceService(store, store, m),
		Sites:         service.NewSiteService(store, cfg.Site.RobotsTemplate, log),
		Contact: service.NewContactService(store, notifier, service.ContactOptions{
			MailAlert: cfg.Contact.MailAlert,
			RateLimit: service.RateLimitConfig{RequestsPerSecond: cfg.Contact.RateLimit, BurstSize: cfg.Contact.RateBurst},
		}, log, m),
		SiteLogs: service.NewSiteLogService(store, notifier, cfg.Site.LogMailAdminsLevel, log, m),
	})
	require.NoError(t, err)

	return &testServer{router: router, store: store, authn: authn, docs: docs}
}

// seedTerms creates "terms" with versions 1, 2 and 3
func (s *testServer) seedTerms(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := s.docs.CreateDocument(ctx, domain.CreateDocumentParams{ID: "terms", Title: "Terms of Service"})
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		_, err := s.docs.AddVersion(ctx, domain.CreateVersionParams{DocumentID: "terms", Content: "terms v" + string(rune('0'+i))})
		require.NoError(t, err)
	}
}

func (s *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := s.authn.IssueToken(userID, "Client", time.Hour)
	require.NoError(t, err)
	return token
}

type requestOpts struct {
	token    string
	adminKey string
	body     string
	form     url.Values
	host     string
}

func (s *testServer) do(t *testing.T, method, target string, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	switch {
	case opts.form != nil:
		req = httptest.NewRequest(method, target, strings.NewReader(opts.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case opts.body != "":
		req = httptest.NewRequest(method, target, strings.NewReader(opts.body))
		req.Header.Set("Content-Type", "application/json")
	default:
		req = httptest.NewRequest(method, target, nil)
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	if opts.adminKey != "" {
		req.Header.Set(middleware.AdminKeyHeader, opts.adminKey)
	}
	if opts.host != "" {
		req.Host = opts.host
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/health", requestOpts{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"sitetools"}`, w.Body.String())

	require.NoError(t, s.store.Close())
	w = s.do(t, http.MethodGet, "/health", requestOpts{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/health", requestOpts{})

	w := s.do(t, http.MethodGet, "/metrics", requestOpts{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sitetools_http_requests_total")
}

func TestRobotsEndpoint(t *testing.T) {
	template := filepath.Join(t.TempDir(), "robots.txt")
	require.NoError(t, os.WriteFile(template, []byte("User-agent: *\n"), 0o644))

	s := newTestServer(t, func(cfg *config.Config) { cfg.Site.RobotsTemplate = template })

	w := s.do(t, http.MethodPut, "/admin/sites/example.com/robots", requestOpts{
		adminKey: testAdminKey,
		body:     `{"robots":"Disallow: /private/\n"}`,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/robots.txt", requestOpts{host: "example.com:8080"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "User-agent: *\nDisallow: /private/\n", w.Body.String())

	w = s.do(t, http.MethodGet, "/robots.txt", requestOpts{host: "other.org"})
	assert.Equal(t, "User-agent: *\n", w.Body.String())
}

func TestContactEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"name":"Ana","email":"ana@example.com","subject":"Hi","message":"Hello there"}`

	w := s.do(t, http.MethodPost, "/contact", requestOpts{body: body})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Burst of one per client IP
	w = s.do(t, http.MethodPost, "/contact", requestOpts{body: body})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "429", decode(t, w).Code)

	w = s.do(t, http.MethodPost, "/contact", requestOpts{body: `{"name":"Ana"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaintenanceMode(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Site.UnderMaintenance = true
		cfg.Site.MaintenanceWhitelist = []string{"/admin/"}
	})
	s.seedTerms(t)

	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/legal/terms", requestOpts{}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", requestOpts{}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/admin/documents", requestOpts{adminKey: testAdminKey}).Code)
}
