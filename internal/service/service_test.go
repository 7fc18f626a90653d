package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/repository/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// seedTerms creates the "terms" document with versions 1..n
func seedTerms(t *testing.T, docs DocumentService, n int) []*domain.LegalDocumentVersion {
	t.Helper()
	ctx := context.Background()

	_, err := docs.CreateDocument(ctx, domain.CreateDocumentParams{ID: "terms", Title: "Terms of Service"})
	require.NoError(t, err)

	versions := make([]*domain.LegalDocumentVersion, 0, n)
	for i := 0; i < n; i++ {
		v, err := docs.AddVersion(ctx, domain.CreateVersionParams{DocumentID: "terms", Content: "terms text"})
		require.NoError(t, err)
		versions = append(versions, v)
	}
	return versions
}

// recordingNotifier captures alerts
type recordingNotifier struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.alerts)
}

var errNotifyFailed = errors.New("smtp down")
