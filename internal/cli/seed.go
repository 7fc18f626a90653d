package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/service"
)

// Fixtures is the seed file layout
type Fixtures struct {
	Documents []DocumentFixture `yaml:"documents"`
	Sites     []SiteFixture     `yaml:"sites"`
}

type DocumentFixture struct {
	ID          string           `yaml:"id"`
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Versions    []VersionFixture `yaml:"versions"`
}

type VersionFixture struct {
	// 0 assigns the next number
	Version int64  `yaml:"version"`
	Content string `yaml:"content"`
}

type SiteFixture struct {
	Domain string `yaml:"domain"`
	Robots string `yaml:"robots"`
}

// SeedReport counts what ApplyFixtures created
type SeedReport struct {
	Documents int
	Skipped   int
	Versions  int
	Sites     int
}

// LoadFixtures decodes a YAML seed file
func LoadFixtures(r io.Reader) (*Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

// ApplyFixtures creates the fixture documents and site settings. Documents that
// already exist are skipped whole, so seeding twice is harmless.
func ApplyFixtures(ctx context.Context, docs service.DocumentService, sites service.SiteService, f *Fixtures) (SeedReport, error) {
	var report SeedReport

	for _, d := range f.Documents {
		existing, err := docs.GetDocument(ctx, d.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return report, err
		}
		if existing != nil {
			report.Skipped++
			continue
		}

		if _, err := docs.CreateDocument(ctx, domain.CreateDocumentParams{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
		}); err != nil {
			return report, fmt.Errorf("document %q: %w", d.ID, err)
		}
		report.Documents++

		for _, v := range d.Versions {
			if _, err := docs.AddVersion(ctx, domain.CreateVersionParams{
				DocumentID: d.ID,
				Version:    v.Version,
				Content:    v.Content,
			}); err != nil {
				return report, fmt.Errorf("document %q version %d: %w", d.ID, v.Version, err)
			}
			report.Versions++
		}
	}

	for _, s := range f.Sites {
		if _, err := sites.SetRobots(ctx, s.Domain, s.Robots); err != nil {
			return report, fmt.Errorf("site %q: %w", s.Domain, err)
		}
		report.Sites++
	}

	return report, nil
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load legal documents and site settings from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer fh.Close()

			fixtures, err := LoadFixtures(fh)
			if err != nil {
				return err
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg, log, true)
			if err != nil {
				return err
			}
			defer store.Close()

			report, err := ApplyFixtures(cmd.Context(),
				service.NewDocumentService(store),
				service.NewSiteService(store, cfg.Site.RobotsTemplate, log),
				fixtures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents (%d skipped), %d versions, %d sites\n",
				report.Documents, report.Skipped, report.Versions, report.Sites)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
