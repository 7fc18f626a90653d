package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/thatlq1812/sitetools/internal/auth"
	"github.com/thatlq1812/sitetools/internal/config"
	"github.com/thatlq1812/sitetools/internal/handler"
	"github.com/thatlq1812/sitetools/internal/health"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/repository"
	"github.com/thatlq1812/sitetools/internal/service"
)

const healthCheckInterval = 10 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the gRPC health service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, log, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

// buildDeps constructs every service over store
func buildDeps(cfg *config.Config, store repository.Store, log *logger.Logger, m *metrics.Metrics) handler.Deps {
	notifier := service.NewLogNotifier(log)

	return handler.Deps{
		Config:        cfg,
		Log:           log,
		Metrics:       m,
		Store:         store,
		Authenticator: auth.NewAuthenticator(cfg.Auth.JWTSecret),
		AdminKey:      auth.NewAdminKey(cfg.Auth.AdminKeyHash),

		Resolver: service.NewVersionResolver(store, service.ResolverOptions{
			ShowPreviousVersions: cfg.Legal.ShowPreviousVersions,
		}, m),
		Documents:   service.NewDocumentService(store),
		Acceptances: service.NewAcceptanceService(store, store, m),
		Sites:       service.NewSiteService(store, cfg.Site.RobotsTemplate, log),
		Contact: service.NewContactService(store, notifier, service.ContactOptions{
			MailAlert: cfg.Contact.MailAlert,
			RateLimit: service.RateLimitConfig{
				RequestsPerSecond: cfg.Contact.RateLimit,
				BurstSize:         cfg.Contact.RateBurst,
			},
		}, log, m),
		SiteLogs: service.NewSiteLogService(store, notifier, cfg.Site.LogMailAdminsLevel, log, m),
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) error {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Kết nối database
	store, err := openStore(ctx, cfg, log, migrate)
	if err != nil {
		return err
	}
	defer store.Close()

	// 2. Khởi tạo các layer (bottom-up)
	m := metrics.New()
	router, err := handler.NewRouter(buildDeps(cfg, store, log, m))
	if err != nil {
		return err
	}
	if cfg.Auth.AdminKeyHash == "" {
		log.Warn().Msg("ADMIN_API_KEY_HASH not set, admin API disabled")
	}

	// 3. Servers
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthSrv, err := health.New(cfg.Server.GetGRPCAddr(), store, healthCheckInterval, log)
	if err != nil {
		return err
	}

	// 4. Chờ signal shutdown, sau đó graceful shutdown với timeout
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	// Chạy server trong goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		if err := healthSrv.Serve(ctx); err != nil {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("server failed, shutting down")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("sitetools stopped")
	return serveErr
}
