package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// LegalDocument is a named legal text (terms, privacy policy, ...) owning zero or more versions
type LegalDocument struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// LegalDocumentVersion is one immutable revision of a LegalDocument
type LegalDocumentVersion struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Version    int64     `db:"version" json:"version"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LegalDocumentAcceptance is an append-only audit row written on explicit confirmation
type LegalDocumentAcceptance struct {
	ID          string          `db:"id" json:"id"`
	VersionID   string          `db:"version_id" json:"version_id"`
	DocumentID  string          `db:"document_id" json:"document_id"`
	Version     int64           `db:"version" json:"version"`
	ActorID     *string         `db:"actor_id" json:"actor_id,omitempty"` // nil for anonymous
	IP          string          `db:"ip" json:"ip"`
	Description string          `db:"description" json:"description,omitempty"`
	Data        json.RawMessage `db:"data" json:"data,omitempty"`
	AcceptedAt  time.Time       `db:"accepted_at" json:"accepted_at"`
}

// CreateDocumentParams for inserting a new legal document
type CreateDocumentParams struct {
	ID          string
	Title       string
	Description string
}

// CreateVersionParams for appending a version. Version 0 means "next after latest".
type CreateVersionParams struct {
	DocumentID string
	Version    int64
	Content    string
}

// CreateAcceptanceParams for recording an acceptance
type CreateAcceptanceParams struct {
	Version     *LegalDocumentVersion
	ActorID     *string
	IP          string
	Description string
	Data        json.RawMessage
}

// CompareVersions orders two versions of the same document.
// Returns -1, 0 or 1. Version number decides; CreatedAt then ID break ties.
func CompareVersions(a, b *LegalDocumentVersion) int {
	switch {
	case a.Version < b.Version:
		return -1
	case a.Version > b.Version:
		return 1
	}
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case a.CreatedAt.After(b.CreatedAt):
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// LatestVersion returns the maximum version by CompareVersions, or nil for an empty list
func LatestVersion(versions []*LegalDocumentVersion) *LegalDocumentVersion {
	var latest *LegalDocumentVersion
	for _, v := range versions {
		if v == nil {
			continue
		}
		if latest == nil || CompareVersions(v, latest) > 0 {
			latest = v
		}
	}
	return latest
}
