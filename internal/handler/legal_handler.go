package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/middleware"
	"github.com/thatlq1812/sitetools/internal/response"
	"github.com/thatlq1812/sitetools/internal/service"
	"github.com/thatlq1812/sitetools/pkg/validator"
)

// LegalHandler xử lý các HTTP endpoints liên quan đến legal documents và acceptance
type LegalHandler struct {
	resolver    service.VersionResolver
	acceptances service.AcceptanceService
	profileURL  string
	metrics     *metrics.Metrics
}

// NewLegalHandler tạo mới LegalHandler
func NewLegalHandler(resolver service.VersionResolver, acceptances service.AcceptanceService, profileURL string, m *metrics.Metrics) *LegalHandler {
	return &LegalHandler{
		resolver:    resolver,
		acceptances: acceptances,
		profileURL:  profileURL,
		metrics:     m,
	}
}

// ViewDocument xử lý GET /legal/:docid và GET /legal/:docid/v/:version
func (h *LegalHandler) ViewDocument(c *gin.Context) {
	docID := c.Param("docid")
	version, err := versionParam(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), docID, version)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// Version cũ bị ẩn nếu site không cho phép xem
	if h.resolver.ShouldRedirectToLatest(res) {
		h.metrics.RecordRedirect("latest_version")
		c.Redirect(http.StatusFound, domain.DocumentURL(res.Document.ID))
		return
	}

	response.Success(c, gin.H{
		"document":   res.Document,
		"version":    res.Version,
		"is_latest":  res.IsLatest(),
		"legalpage":  true,
		"accept_url": domain.AcceptURL(res.Document.ID, res.Version.Version, ""),
	})
}

// ConfirmAcceptance xử lý GET|POST /legal/:docid/accept và /legal/:docid/v/:version/accept.
// Có "accept" (khác rỗng) thì lưu acceptance rồi redirect, không thì trả về prompt xác nhận.
func (h *LegalHandler) ConfirmAcceptance(c *gin.Context) {
	docID := c.Param("docid")
	version, err := versionParam(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), docID, version)
	if err != nil {
		response.FromError(c, err)
		return
	}

	next := formValue(c, "next")

	if formValue(c, "accept") == "" {
		response.Success(c, gin.H{
			"document":   res.Document,
			"version":    res.Version,
			"next":       next,
			"accept_url": domain.AcceptURL(res.Document.ID, res.Version.Version, next),
		})
		return
	}

	var data json.RawMessage
	if raw := formValue(c, "data"); raw != "" {
		data = json.RawMessage(raw)
	}

	actor := middleware.GetActor(c)
	_, err = h.acceptances.Record(c.Request.Context(), domain.CreateAcceptanceParams{
		Version:     res.Version,
		ActorID:     actor.IDPtr(),
		IP:          c.ClientIP(),
		Description: formValue(c, "description"),
		Data:        data,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	target := h.profileURL
	if validator.IsLocalURL(next) {
		target = next
	}
	h.metrics.RecordRedirect("accepted")
	c.Redirect(http.StatusFound, target)
}

// MyAcceptances xử lý GET /me/legal/acceptances
func (h *LegalHandler) MyAcceptances(c *gin.Context) {
	actor := middleware.GetActor(c)
	list, err := h.acceptances.ListByActor(c.Request.Context(), actor.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessList(c, list)
}

// versionParam reads the optional :version path segment.
// Anything that is not a positive integer cannot name a version.
func versionParam(c *gin.Context) (*int64, error) {
	raw := c.Param("version")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("version %q: %w", raw, domain.ErrNotFound)
	}
	return &v, nil
}

// formValue prefers the POST body and falls back to the query string
func formValue(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return v
	}
	return c.Query(key)
}
