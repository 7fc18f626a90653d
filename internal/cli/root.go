// Package cli wires the sitetools commands: serve, migrate, seed and key tooling.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thatlq1812/sitetools/internal/config"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/repository"
	"github.com/thatlq1812/sitetools/internal/repository/sqlite"
)

// NewRootCommand builds the sitetools command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sitetools",
		Short: "Legal document versioning and site tools service",
		Long: `sitetools serves versioned legal documents, records their acceptance
and provides site utilities (robots.txt, contact messages, site logs).

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newSeedCommand())
	root.AddCommand(newHashAdminKeyCommand())
	root.AddCommand(newIssueTokenCommand())

	return root
}

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	return cfg, log, nil
}

// openStore connects the configured backend. Postgres migrations run only when
// migrate is set; the SQLite store always migrates on open.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", config.DriverSQLite).Str("path", cfg.Storage.SQLitePath).Msg("Database connection established")
		return store, nil

	case config.DriverPostgres:
		pool, err := repository.OpenPostgres(ctx, cfg.Storage.DatabaseURL, cfg.Storage.MaxConn)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", config.DriverPostgres).Msg("Database connection established")

		if migrate {
			applied, err := repository.MigratePostgres(ctx, pool)
			if err != nil {
				pool.Close()
				return nil, err
			}
			log.DBLogger("migrate").Info().Strs("applied", applied).Msg("migrations complete")
		}
		return repository.NewPostgresStore(pool), nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
