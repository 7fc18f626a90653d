// Package migrate applies embedded "-- +migrate Up" SQL files, once per file, to any backend.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Table records applied migration file names
const Table = "schema_migrations"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// Target is the backend-specific half of a migration run
type Target interface {
	// EnsureTable creates the bookkeeping table if missing
	EnsureTable(ctx context.Context) error
	IsApplied(ctx context.Context, name string) (bool, error)
	// Apply runs upSQL and records name in one transaction
	Apply(ctx context.Context, name, upSQL string) error
}

// Run applies every *.sql file under dir in name order and returns the files applied by this call.
// Files whose Up section is empty are skipped without being recorded.
func Run(ctx context.Context, t Target, fsys fs.FS, dir string) ([]string, error) {
	if err := t.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure migration table: %w", err)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	sort.Strings(files)

	var applied []string
	for _, file := range files {
		done, err := t.IsApplied(ctx, file)
		if err != nil {
			return applied, fmt.Errorf("check migration %s: %w", file, err)
		}
		if done {
			continue
		}

		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", file, err)
		}
		upSQL := UpSection(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		if err := t.Apply(ctx, file, upSQL); err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", file, err)
		}
		applied = append(applied, file)
	}

	return applied, nil
}

// UpSection returns the SQL between the Up and Down markers; content without markers is returned whole
func UpSection(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	body := content[upIdx+len(upMarker):]
	if downIdx := strings.Index(body, downMarker); downIdx != -1 {
		body = body[:downIdx]
	}
	return body
}
