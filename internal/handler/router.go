package handler

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/thatlq1812/sitetools/internal/auth"
	"github.com/thatlq1812/sitetools/internal/config"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/middleware"
	"github.com/thatlq1812/sitetools/internal/service"
)

// Deps bundles everything the HTTP layer needs
type Deps struct {
	Config  *config.Config
	Log     *logger.Logger
	Metrics *metrics.Metrics
	Store   Pinger

	Authenticator *auth.Authenticator
	AdminKey      *auth.AdminKey

	Resolver    service.VersionResolver
	Documents   service.DocumentService
	Acceptances service.AcceptanceService
	Sites       service.SiteService
	Contact     service.ContactService
	SiteLogs    service.SiteLogService
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(d Deps) (*gin.Engine, error) {
	cfg := d.Config

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	// Thứ tự middleware: Recovery -> Logger -> Metrics -> CORS -> site log -> guards
	r.Use(gin.Recovery())
	r.Use(middleware.GinLogger(d.Log))
	r.Use(middleware.Metrics(d.Metrics))
	if len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.AdminKeyHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.SiteLogErrors(d.SiteLogs, d.Log))
	if cfg.Site.UnderMaintenance {
		r.Use(middleware.Maintenance(cfg.Site.MaintenanceWhitelist))
	}
	r.Use(middleware.Identify(d.Authenticator))
	if cfg.Legal.ForceAcceptance {
		r.Use(middleware.ForcedAcceptance(middleware.ForcedAcceptanceConfig{
			DocumentID: cfg.Legal.ForcedDocument,
			Version:    cfg.Legal.ForcedVersion,
			Whitelist:  cfg.Legal.ForceWhitelist,
		}, d.Resolver, d.Acceptances, d.Log, d.Metrics))
	}

	legalHandler := NewLegalHandler(d.Resolver, d.Acceptances, cfg.Auth.ProfileURL, d.Metrics)
	siteHandler := NewSiteHandler(d.Sites, d.Contact, d.Store)
	adminHandler := NewAdminHandler(d.Documents, d.Acceptances, d.Sites, d.SiteLogs)

	requireActor := middleware.RequireActor(cfg.Auth.LoginURL, d.Metrics)

	// Operations
	r.GET("/health", siteHandler.Health)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	// Site tools
	r.GET("/robots.txt", siteHandler.Robots)
	r.POST("/contact", siteHandler.Contact)

	// Legal documents
	legal := r.Group("/legal/:docid")
	{
		legal.GET("", legalHandler.ViewDocument)
		legal.GET("/v/:version", legalHandler.ViewDocument)

		legal.GET("/accept", requireActor, legalHandler.ConfirmAcceptance)
		legal.POST("/accept", requireActor, legalHandler.ConfirmAcceptance)
		legal.GET("/v/:version/accept", requireActor, legalHandler.ConfirmAcceptance)
		legal.POST("/v/:version/accept", requireActor, legalHandler.ConfirmAcceptance)
	}

	r.GET("/me/legal/acceptances", requireActor, legalHandler.MyAcceptances)

	// Admin routes chỉ đăng ký khi có ADMIN_API_KEY_HASH
	if d.AdminKey.Enabled() {
		admin := r.Group("/admin", middleware.AdminOnly(d.AdminKey))
		{
			admin.GET("/documents", adminHandler.ListDocuments)
			admin.POST("/documents", adminHandler.CreateDocument)
			admin.GET("/documents/:docid/versions", adminHandler.ListVersions)
			admin.POST("/documents/:docid/versions", adminHandler.AddVersion)
			admin.GET("/documents/:docid/acceptances", adminHandler.ListAcceptances)

			admin.GET("/site-logs", adminHandler.ListSiteLogs)
			admin.POST("/site-logs", adminHandler.CreateSiteLog)

			admin.PUT("/sites/:domain/robots", adminHandler.SetRobots)
		}
	}

	return r, nil
}
