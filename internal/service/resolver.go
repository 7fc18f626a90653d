package service

import (
	"context"
	"fmt"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/repository"
)

// ResolverOptions configures version resolution policy
type ResolverOptions struct {
	// ShowPreviousVersions allows non-latest versions to be viewed instead of redirecting to the latest
	ShowPreviousVersions bool
}

// Resolution is the outcome of a successful lookup
type Resolution struct {
	Document *domain.LegalDocument
	Version  *domain.LegalDocumentVersion
	Latest   *domain.LegalDocumentVersion
}

// IsLatest reports whether the resolved version is the document's latest
func (r *Resolution) IsLatest() bool {
	return r.Version != nil && r.Latest != nil && domain.CompareVersions(r.Version, r.Latest) == 0
}

// VersionResolver maps (document id, optional version number) to a concrete version
type VersionResolver interface {
	// Resolve returns the exact version when one is given, otherwise the latest.
	// Unknown documents, documents without versions and unknown version numbers yield domain.ErrNotFound.
	Resolve(ctx context.Context, documentID string, version *int64) (*Resolution, error)

	// ShouldRedirectToLatest applies the "show previous versions" policy to a resolution
	ShouldRedirectToLatest(res *Resolution) bool
}

type versionResolver struct {
	repo    repository.DocumentRepository
	opts    ResolverOptions
	metrics *metrics.Metrics
}

// NewVersionResolver creates a resolver over the document repository
func NewVersionResolver(repo repository.DocumentRepository, opts ResolverOptions, m *metrics.Metrics) VersionResolver {
	return &versionResolver{repo: repo, opts: opts, metrics: m}
}

func (r *versionResolver) Resolve(ctx context.Context, documentID string, version *int64) (*Resolution, error) {
	res, err := r.resolve(ctx, documentID, version)
	switch {
	case err == nil:
		r.metrics.RecordResolution(metrics.OutcomeResolved)
	case isNotFound(err):
		r.metrics.RecordResolution(metrics.OutcomeNotFound)
	default:
		r.metrics.RecordResolution(metrics.OutcomeError)
	}
	return res, err
}

func (r *versionResolver) resolve(ctx context.Context, documentID string, version *int64) (*Resolution, error) {
	doc, err := r.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %q: %w", documentID, domain.ErrNotFound)
	}

	latest, err := r.repo.GetLatestVersion(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get latest version: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("document %q has no versions: %w", documentID, domain.ErrNotFound)
	}

	if version == nil || *version == latest.Version {
		return &Resolution{Document: doc, Version: latest, Latest: latest}, nil
	}

	v, err := r.repo.GetVersion(ctx, documentID, *version)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get version: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("document %q version %d: %w", documentID, *version, domain.ErrNotFound)
	}
	return &Resolution{Document: doc, Version: v, Latest: latest}, nil
}

func (r *versionResolver) ShouldRedirectToLatest(res *Resolution) bool {
	return !r.opts.ShowPreviousVersions && !res.IsLatest()
}
