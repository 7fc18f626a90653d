package repository

import (
	"context"

	"github.com/thatlq1812/sitetools/internal/domain"
)

// Lookups return (nil, nil) when the row does not exist; callers decide what missing means.

// DocumentRepository holds legal documents and their versions
type DocumentRepository interface {
	CreateDocument(ctx context.Context, params domain.CreateDocumentParams) (*domain.LegalDocument, error)
	GetDocument(ctx context.Context, id string) (*domain.LegalDocument, error)
	ListDocuments(ctx context.Context) ([]*domain.LegalDocument, error)

	// CreateVersion inserts params as-is; params.Version must already be assigned.
	// A duplicate (document, version) pair yields domain.ErrVersionConflict.
	CreateVersion(ctx context.Context, params domain.CreateVersionParams) (*domain.LegalDocumentVersion, error)
	GetVersion(ctx context.Context, documentID string, version int64) (*domain.LegalDocumentVersion, error)
	// GetLatestVersion returns the highest version number; (document, version) is unique
	// so this agrees with domain.CompareVersions.
	GetLatestVersion(ctx context.Context, documentID string) (*domain.LegalDocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]*domain.LegalDocumentVersion, error)
}

// AcceptanceRepository is the append-only acceptance audit trail
type AcceptanceRepository interface {
	CreateAcceptance(ctx context.Context, params domain.CreateAcceptanceParams) (*domain.LegalDocumentAcceptance, error)
	ListAcceptancesByActor(ctx context.Context, actorID string) ([]*domain.LegalDocumentAcceptance, error)
	ListAcceptancesByDocument(ctx context.Context, documentID string) ([]*domain.LegalDocumentAcceptance, error)
	HasAccepted(ctx context.Context, actorID, versionID string) (bool, error)
}

// SiteRepository holds per-site settings, contact messages and site logs
type SiteRepository interface {
	GetSiteInfo(ctx context.Context, domain string) (*domain.SiteInfo, error)
	UpsertRobots(ctx context.Context, domain, robots string) (*domain.SiteInfo, error)
	CreateContactMessage(ctx context.Context, params domain.CreateContactMessageParams) (*domain.ContactMessage, error)
	CreateSiteLog(ctx context.Context, params domain.CreateSiteLogParams) (*domain.SiteLog, error)
	ListSiteLogs(ctx context.Context, limit int) ([]*domain.SiteLog, error)
}

// Store bundles every repository over one connection
type Store interface {
	DocumentRepository
	AcceptanceRepository
	SiteRepository

	Ping(ctx context.Context) error
	Close() error
}
