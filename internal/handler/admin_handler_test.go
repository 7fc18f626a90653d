package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatlq1812/sitetools/internal/auth"
	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/service"
)

func TestAdminRequiresKey(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/documents", requestOpts{}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/admin/documents", requestOpts{adminKey: "nope"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/admin/documents", requestOpts{adminKey: testAdminKey}).Code)
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	cfg := testConfig(t)
	s := newTestServer(t, nil)

	router, err := NewRouter(Deps{
		Config:        cfg,
		Log:           logger.Nop(),
		Store:         s.store,
		Authenticator: s.authn,
		AdminKey:      auth.NewAdminKey(""),
		SiteLogs:      service.NewSiteLogService(s.store, nil, 0, logger.Nop(), nil),
	})
	require.NoError(t, err)
	s.router = router

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/admin/documents", requestOpts{adminKey: testAdminKey}).Code)
}

func TestAdminDocumentLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	admin := requestOpts{adminKey: testAdminKey}

	withBody := func(body string) requestOpts {
		o := admin
		o.body = body
		return o
	}

	w := s.do(t, http.MethodPost, "/admin/documents", withBody(`{"id":"privacy","title":"Privacy Policy"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "201", decode(t, w).Code)

	w = s.do(t, http.MethodPost, "/admin/documents", withBody(`{"id":"privacy","title":"Again"}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/admin/documents", withBody(`{"id":"Bad Id","title":"x"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/admin/documents", withBody(`{"title":"missing id"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/admin/documents/privacy/versions", withBody(`{"content":"v1 text"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v domain.LegalDocumentVersion
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &v))
	assert.EqualValues(t, 1, v.Version)

	w = s.do(t, http.MethodPost, "/admin/documents/privacy/versions", withBody(`{"version":1,"content":"again"}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/admin/documents/cookies/versions", withBody(`{"content":"x"}`))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/admin/documents/privacy/versions", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"total":1`)

	w = s.do(t, http.MethodGet, "/admin/documents/privacy/acceptances", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0}`, string(decode(t, w).Data))

	w = s.do(t, http.MethodGet, "/admin/documents/cookies/acceptances", admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/admin/documents", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"privacy"`)
}

func TestAdminSiteLogs(t *testing.T) {
	s := newTestServer(t, nil)
	admin := requestOpts{adminKey: testAdminKey}

	for _, body := range []string{
		`{"level":20,"message":"deploy finished"}`,
		`{"level":40,"message":"payment gateway timeout","data":{"order":9}}`,
	} {
		o := admin
		o.body = body
		w := s.do(t, http.MethodPost, "/admin/site-logs", o)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/admin/site-logs?limit=1", admin)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []domain.SiteLog `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "payment gateway timeout", page.Items[0].Message)

	w = s.do(t, http.MethodGet, "/admin/site-logs?limit=abc", admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
