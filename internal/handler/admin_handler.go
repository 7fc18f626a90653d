package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/response"
	"github.com/thatlq1812/sitetools/internal/service"
)

// AdminHandler xử lý các HTTP endpoints dành cho Admin (documents, sites, site logs)
type AdminHandler struct {
	documents   service.DocumentService
	acceptances service.AcceptanceService
	sites       service.SiteService
	siteLogs    service.SiteLogService
}

// NewAdminHandler tạo mới AdminHandler
func NewAdminHandler(
	documents service.DocumentService,
	acceptances service.AcceptanceService,
	sites service.SiteService,
	siteLogs service.SiteLogService,
) *AdminHandler {
	return &AdminHandler{
		documents:   documents,
		acceptances: acceptances,
		sites:       sites,
		siteLogs:    siteLogs,
	}
}

func badRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
}

// CreateDocument xử lý POST /admin/documents
func (h *AdminHandler) CreateDocument(c *gin.Context) {
	var reqBody struct {
		ID          string `json:"id" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		badRequest(c, err)
		return
	}

	doc, err := h.documents.CreateDocument(c.Request.Context(), domain.CreateDocumentParams{
		ID:          reqBody.ID,
		Title:       reqBody.Title,
		Description: reqBody.Description,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "Document created successfully", doc)
}

// ListDocuments xử lý GET /admin/documents
func (h *AdminHandler) ListDocuments(c *gin.Context) {
	docs, err := h.documents.ListDocuments(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessList(c, docs)
}

// AddVersion xử lý POST /admin/documents/:docid/versions
func (h *AdminHandler) AddVersion(c *gin.Context) {
	var reqBody struct {
		// Bỏ trống hoặc = 0 thì service tự lấy latest+1
		Version int64  `json:"version"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		badRequest(c, err)
		return
	}

	v, err := h.documents.AddVersion(c.Request.Context(), domain.CreateVersionParams{
		DocumentID: c.Param("docid"),
		Version:    reqBody.Version,
		Content:    reqBody.Content,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "Version created successfully", v)
}

// ListVersions xử lý GET /admin/documents/:docid/versions
func (h *AdminHandler) ListVersions(c *gin.Context) {
	versions, err := h.documents.ListVersions(c.Request.Context(), c.Param("docid"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessList(c, versions)
}

// ListAcceptances xử lý GET /admin/documents/:docid/acceptances
func (h *AdminHandler) ListAcceptances(c *gin.Context) {
	list, err := h.acceptances.ListByDocument(c.Request.Context(), c.Param("docid"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessList(c, list)
}

// ListSiteLogs xử lý GET /admin/site-logs?limit=N
func (h *AdminHandler) ListSiteLogs(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		limit = n
	}

	logs, err := h.siteLogs.List(c.Request.Context(), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessList(c, logs)
}

// CreateSiteLog xử lý POST /admin/site-logs
func (h *AdminHandler) CreateSiteLog(c *gin.Context) {
	var reqBody struct {
		Level   int             `json:"level" binding:"required"`
		Message string          `json:"message" binding:"required"`
		Data    json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.siteLogs.Log(c.Request.Context(), domain.CreateSiteLogParams{
		Level:   reqBody.Level,
		Message: reqBody.Message,
		Data:    reqBody.Data,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, "Site log recorded", entry)
}

// SetRobots xử lý PUT /admin/sites/:domain/robots
func (h *AdminHandler) SetRobots(c *gin.Context) {
	var reqBody struct {
		Robots string `json:"robots"`
	}
	if err := c.ShouldBindJSON(&reqBody); err != nil {
		badRequest(c, err)
		return
	}

	info, err := h.sites.SetRobots(c.Request.Context(), c.Param("domain"), reqBody.Robots)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, info)
}
