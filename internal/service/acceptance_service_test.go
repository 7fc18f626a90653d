package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/metrics"
)

func TestRecord_AlwaysAppends(t *testing.T) {
	store := newTestStore(t)
	versions := seedTerms(t, NewDocumentService(store), 2)
	m := metrics.New()
	acceptances := NewAcceptanceService(store, store, m)
	ctx := context.Background()

	actor := "user-1"
	first, err := acceptances.Record(ctx, domain.CreateAcceptanceParams{Version: versions[1], ActorID: &actor, IP: "10.0.0.1"})
	require.NoError(t, err)
	second, err := acceptances.Record(ctx, domain.CreateAcceptanceParams{Version: versions[1], ActorID: &actor, IP: "10.0.0.1"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, versions[1].ID, first.VersionID)
	assert.EqualValues(t, 2, first.Version)
	assert.False(t, first.AcceptedAt.IsZero())

	list, err := acceptances.ListByActor(ctx, actor)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AcceptancesTotal.WithLabelValues("terms")))
}

func TestRecord_Validation(t *testing.T) {
	store := newTestStore(t)
	versions := seedTerms(t, NewDocumentService(store), 1)
	acceptances := NewAcceptanceService(store, store, nil)
	ctx := context.Background()

	empty := ""
	tests := []struct {
		name    string
		params  domain.CreateAcceptanceParams
		wantErr error
	}{
		{"Anonymous", domain.CreateAcceptanceParams{Version: versions[0], IP: "127.0.0.1"}, nil},
		{"Empty actor id is anonymous", domain.CreateAcceptanceParams{Version: versions[0], ActorID: &empty, IP: "::1"}, nil},
		{"With payload", domain.CreateAcceptanceParams{Version: versions[0], IP: "127.0.0.1", Description: "checkout", Data: json.RawMessage(`{"order":42}`)}, nil},
		{"Missing version", domain.CreateAcceptanceParams{IP: "127.0.0.1"}, domain.ErrInvalidInput},
		{"Unparsed IP stored as given", domain.CreateAcceptanceParams{Version: versions[0], IP: "unknown"}, nil},
		{"No IP", domain.CreateAcceptanceParams{Version: versions[0]}, nil},
		{"Payload that is not JSON", domain.CreateAcceptanceParams{Version: versions[0], IP: "127.0.0.1", Data: json.RawMessage(`{`)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := acceptances.Record(ctx, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, a.ActorID)
		})
	}

	list, err := acceptances.ListByDocument(ctx, "terms")
	require.NoError(t, err)
	assert.Len(t, list, 6)
}

func TestRecord_KeepsOpaquePayload(t *testing.T) {
	store := newTestStore(t)
	versions := seedTerms(t, NewDocumentService(store), 1)
	acceptances := NewAcceptanceService(store, store, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		ip   string
		data json.RawMessage
		want string
	}{
		{"JSON object", "127.0.0.1", json.RawMessage(`{"cart":7}`), `{"cart":7}`},
		{"Broken JSON", "127.0.0.1", json.RawMessage(`{broken`), `"{broken"`},
		{"Plain text", "proxy-hidden", json.RawMessage(`not json`), `"not json"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := acceptances.Record(ctx, domain.CreateAcceptanceParams{Version: versions[0], IP: tt.ip, Data: tt.data})
			require.NoError(t, err)
			assert.Equal(t, tt.ip, a.IP)
			assert.JSONEq(t, tt.want, string(a.Data))
		})
	}

	list, err := acceptances.ListByDocument(ctx, "terms")
	require.NoError(t, err)
	assert.Len(t, list, len(tests))
}

func TestListByDocument_UnknownDocument(t *testing.T) {
	store := newTestStore(t)
	acceptances := NewAcceptanceService(store, store, nil)

	_, err := acceptances.ListByDocument(context.Background(), "terms")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = acceptances.ListByActor(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHasAccepted(t *testing.T) {
	store := newTestStore(t)
	versions := seedTerms(t, NewDocumentService(store), 2)
	acceptances := NewAcceptanceService(store, store, nil)
	ctx := context.Background()

	actor := "user-7"
	_, err := acceptances.Record(ctx, domain.CreateAcceptanceParams{Version: versions[0], ActorID: &actor, IP: "127.0.0.1"})
	require.NoError(t, err)

	ok, err := acceptances.HasAccepted(ctx, actor, versions[0].ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = acceptances.HasAccepted(ctx, actor, versions[1].ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = acceptances.HasAccepted(ctx, "", versions[0].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
