package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/response"
	"github.com/thatlq1812/sitetools/internal/service"
)

// Pinger reports storage reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// SiteHandler xử lý robots.txt, contact form và health check
type SiteHandler struct {
	sites   service.SiteService
	contact service.ContactService
	store   Pinger
}

// NewSiteHandler tạo mới SiteHandler
func NewSiteHandler(sites service.SiteService, contact service.ContactService, store Pinger) *SiteHandler {
	return &SiteHandler{sites: sites, contact: contact, store: store}
}

// Robots xử lý GET /robots.txt
func (h *SiteHandler) Robots(c *gin.Context) {
	body, err := h.sites.Robots(c.Request.Context(), c.Request.Host)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Contact xử lý POST /contact
func (h *SiteHandler) Contact(c *gin.Context) {
	var reqBody struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email" binding:"required"`
		Subject string `json:"subject" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		badRequest(c, err)
		return
	}

	msg, err := h.contact.Submit(c.Request.Context(), domain.CreateContactMessageParams{
		Name:    reqBody.Name,
		Email:   reqBody.Email,
		Subject: reqBody.Subject,
		Message: reqBody.Message,
		IP:      c.ClientIP(),
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "Message sent", gin.H{"id": msg.ID})
}

// Health xử lý GET /health
func (h *SiteHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "sitetools"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "sitetools"})
}
