package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/repository/migrate"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sitetools.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedDocument(t *testing.T, store *Store, id string, versions ...int64) []*domain.LegalDocumentVersion {
	t.Helper()
	ctx := context.Background()

	_, err := store.CreateDocument(ctx, domain.CreateDocumentParams{ID: id, Title: id})
	require.NoError(t, err)

	var created []*domain.LegalDocumentVersion
	for _, n := range versions {
		v, err := store.CreateVersion(ctx, domain.CreateVersionParams{DocumentID: id, Version: n, Content: "content"})
		require.NoError(t, err)
		created = append(created, v)
	}
	return created
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitetools.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.CreateDocument(context.Background(), domain.CreateDocumentParams{ID: "terms", Title: "Terms"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Migrations must not run twice
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.GetDocument(context.Background(), "terms")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Terms", doc.Title)
}

func TestOpen_RecordsMigrations(t *testing.T) {
	store := openTestStore(t)

	rows, err := store.sqlDB.Query(`SELECT name FROM ` + migrate.Table + ` ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"migrations/0001_legal_documents.sql", "migrations/0002_site_tools.sql"}, names)
}

func TestDocuments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seedDocument(t, store, "terms", 1, 2, 3)
	seedDocument(t, store, "privacy", 1)

	_, err := store.CreateDocument(ctx, domain.CreateDocumentParams{ID: "terms", Title: "again"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "privacy", docs[0].ID)
	assert.Equal(t, "terms", docs[1].ID)

	missing, err := store.GetDocument(ctx, "cookies")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVersions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	seedDocument(t, store, "terms", 1, 2, 3)

	_, err := store.CreateVersion(ctx, domain.CreateVersionParams{DocumentID: "terms", Version: 2, Content: "dup"})
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	v, err := store.GetVersion(ctx, "terms", 2)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.EqualValues(t, 2, v.Version)
	assert.Equal(t, "terms", v.DocumentID)
	assert.False(t, v.CreatedAt.IsZero())

	missing, err := store.GetVersion(ctx, "terms", 9)
	require.NoError(t, err)
	assert.Nil(t, missing)

	versions, err := store.ListVersions(ctx, "terms")
	require.NoError(t, err)
	assert.Len(t, versions, 3)
	assert.EqualValues(t, 3, domain.LatestVersion(versions).Version)

	none, err := store.ListVersions(ctx, "privacy")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetLatestVersion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Inserted out of order; the highest number wins regardless of insertion time
	seedDocument(t, store, "terms", 2, 5, 3)

	latest, err := store.GetLatestVersion(ctx, "terms")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.EqualValues(t, 5, latest.Version)

	versions, err := store.ListVersions(ctx, "terms")
	require.NoError(t, err)
	assert.Equal(t, domain.LatestVersion(versions).ID, latest.ID)

	none, err := store.GetLatestVersion(ctx, "privacy")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAcceptances_DuplicatesAreKept(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	versions := seedDocument(t, store, "terms", 1, 2)
	actor := "user-1"

	first, err := store.CreateAcceptance(ctx, domain.CreateAcceptanceParams{
		Version: versions[1], ActorID: &actor, IP: "10.0.0.1",
		Data: json.RawMessage(`{"source":"banner"}`),
	})
	require.NoError(t, err)
	second, err := store.CreateAcceptance(ctx, domain.CreateAcceptanceParams{
		Version: versions[1], ActorID: &actor, IP: "10.0.0.2",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := store.ListAcceptancesByActor(ctx, actor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, a := range list {
		require.NotNil(t, a.ActorID)
		assert.Equal(t, actor, *a.ActorID)
		assert.EqualValues(t, 2, a.Version)
	}

	var withData *domain.LegalDocumentAcceptance
	for _, a := range list {
		if a.ID == first.ID {
			withData = a
		}
	}
	require.NotNil(t, withData)
	assert.JSONEq(t, `{"source":"banner"}`, string(withData.Data))
}

func TestAcceptances_AnonymousAndHasAccepted(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	versions := seedDocument(t, store, "cookies", 1, 2)

	_, err := store.CreateAcceptance(ctx, domain.CreateAcceptanceParams{Version: versions[0], IP: "192.168.1.5", Description: "banner"})
	require.NoError(t, err)

	actor := "user-2"
	_, err = store.CreateAcceptance(ctx, domain.CreateAcceptanceParams{Version: versions[0], ActorID: &actor, IP: "192.168.1.6"})
	require.NoError(t, err)

	byDoc, err := store.ListAcceptancesByDocument(ctx, "cookies")
	require.NoError(t, err)
	require.Len(t, byDoc, 2)

	var anonymous int
	for _, a := range byDoc {
		if a.ActorID == nil {
			anonymous++
			assert.Equal(t, "banner", a.Description)
		}
	}
	assert.Equal(t, 1, anonymous)

	ok, err := store.HasAccepted(ctx, actor, versions[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.HasAccepted(ctx, actor, versions[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAcceptances_RequireVersion(t *testing.T) {
	store := openTestStore(t)
	_, err := store.CreateAcceptance(context.Background(), domain.CreateAcceptanceParams{IP: "1.2.3.4"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	info, err := store.GetSiteInfo(ctx, "example.com")
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = store.UpsertRobots(ctx, "example.com", "Disallow: /private/\n")
	require.NoError(t, err)
	_, err = store.UpsertRobots(ctx, "example.com", "Disallow: /tmp/\n")
	require.NoError(t, err)

	info, err = store.GetSiteInfo(ctx, "example.com")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Disallow: /tmp/\n", info.Robots)

	msg, err := store.CreateContactMessage(ctx, domain.CreateContactMessageParams{
		Name: "Ana", Email: "ana@example.com", Subject: "Hi", Message: "Hello", IP: "10.0.0.9",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	for i, level := range []int{domain.LogLevelInfo, domain.LogLevelError, domain.LogLevelWarning} {
		_, err := store.CreateSiteLog(ctx, domain.CreateSiteLogParams{Level: level, Message: "entry", Data: json.RawMessage(`{"i":` + string(rune('0'+i)) + `}`)})
		require.NoError(t, err)
	}

	logs, err := store.ListSiteLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.LogLevelWarning, logs[0].Level)
	assert.JSONEq(t, `{"i":2}`, string(logs[0].Data))
}

func TestPing(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	var nilStore *Store
	assert.Error(t, nilStore.Ping(context.Background()))
	assert.NoError(t, nilStore.Close())
}
