package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/repository"
)

// AcceptanceService records and queries the acceptance audit trail
type AcceptanceService interface {
	// Record always appends a new row; prior acceptances are never consulted.
	// Only the version is required: the IP is stored as given and a payload that
	// is not JSON is kept as a JSON string.
	Record(ctx context.Context, params domain.CreateAcceptanceParams) (*domain.LegalDocumentAcceptance, error)

	ListByActor(ctx context.Context, actorID string) ([]*domain.LegalDocumentAcceptance, error)
	ListByDocument(ctx context.Context, documentID string) ([]*domain.LegalDocumentAcceptance, error)
	HasAccepted(ctx context.Context, actorID, versionID string) (bool, error)
}

type acceptanceService struct {
	repo    repository.AcceptanceRepository
	docs    repository.DocumentRepository
	metrics *metrics.Metrics
}

func NewAcceptanceService(repo repository.AcceptanceRepository, docs repository.DocumentRepository, m *metrics.Metrics) AcceptanceService {
	return &acceptanceService{repo: repo, docs: docs, metrics: m}
}

func (s *acceptanceService) Record(ctx context.Context, params domain.CreateAcceptanceParams) (*domain.LegalDocumentAcceptance, error) {
	if params.Version == nil || params.Version.ID == "" {
		return nil, invalid(fmt.Errorf("version is required"))
	}
	if params.ActorID != nil && *params.ActorID == "" {
		params.ActorID = nil
	}
	params.Data = opaqueJSON(params.Data)

	a, err := s.repo.CreateAcceptance(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("service: failed to record acceptance: %w", err)
	}

	s.metrics.RecordAcceptance(a.DocumentID)
	return a, nil
}

// opaqueJSON keeps valid JSON as-is and quotes anything else so it fits a JSON column
func opaqueJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || json.Valid(raw) {
		return raw
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return nil
	}
	return quoted
}

func (s *acceptanceService) ListByActor(ctx context.Context, actorID string) ([]*domain.LegalDocumentAcceptance, error) {
	if actorID == "" {
		return nil, invalid(fmt.Errorf("actor id is required"))
	}

	list, err := s.repo.ListAcceptancesByActor(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list acceptances: %w", err)
	}
	return list, nil
}

func (s *acceptanceService) ListByDocument(ctx context.Context, documentID string) ([]*domain.LegalDocumentAcceptance, error) {
	doc, err := s.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %q: %w", documentID, domain.ErrNotFound)
	}

	list, err := s.repo.ListAcceptancesByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list acceptances: %w", err)
	}
	return list, nil
}

func (s *acceptanceService) HasAccepted(ctx context.Context, actorID, versionID string) (bool, error) {
	if actorID == "" || versionID == "" {
		return false, nil
	}

	ok, err := s.repo.HasAccepted(ctx, actorID, versionID)
	if err != nil {
		return false, fmt.Errorf("service: failed to check acceptance: %w", err)
	}
	return ok, nil
}
