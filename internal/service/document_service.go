package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/repository"
	"github.com/thatlq1812/sitetools/pkg/validator"
)

// DocumentService defines administrative operations on legal documents
type DocumentService interface {
	CreateDocument(ctx context.Context, params domain.CreateDocumentParams) (*domain.LegalDocument, error)
	GetDocument(ctx context.Context, id string) (*domain.LegalDocument, error)
	ListDocuments(ctx context.Context) ([]*domain.LegalDocument, error)

	// AddVersion appends a version. Version 0 is assigned latest+1; an explicit number
	// must be strictly greater than the current latest.
	AddVersion(ctx context.Context, params domain.CreateVersionParams) (*domain.LegalDocumentVersion, error)
	ListVersions(ctx context.Context, documentID string) ([]*domain.LegalDocumentVersion, error)
}

// documentService implements DocumentService
type documentService struct {
	repo repository.DocumentRepository
}

// NewDocumentService creates a new service instance
func NewDocumentService(repo repository.DocumentRepository) DocumentService {
	return &documentService{repo: repo}
}

// CreateDocument creates a new legal document with validation
func (s *documentService) CreateDocument(ctx context.Context, params domain.CreateDocumentParams) (*domain.LegalDocument, error) {
	params.ID = strings.TrimSpace(params.ID)
	params.Title = strings.TrimSpace(params.Title)

	if err := validator.ValidateDocumentID(params.ID); err != nil {
		return nil, invalid(err)
	}
	if err := validator.ValidateTitle(params.Title); err != nil {
		return nil, invalid(err)
	}

	doc, err := s.repo.CreateDocument(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create document: %w", err)
	}
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*domain.LegalDocument, error) {
	doc, err := s.repo.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get document: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context) ([]*domain.LegalDocument, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list documents: %w", err)
	}
	return docs, nil
}

// AddVersion creates a new version of an existing document
func (s *documentService) AddVersion(ctx context.Context, params domain.CreateVersionParams) (*domain.LegalDocumentVersion, error) {
	if params.Version < 0 {
		return nil, invalid(fmt.Errorf("version must not be negative"))
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, invalid(fmt.Errorf("content is required"))
	}

	// Step 1: Check document có tồn tại không
	if _, err := s.GetDocument(ctx, params.DocumentID); err != nil {
		return nil, err
	}

	// Step 2: Version mới phải lớn hơn latest hiện tại
	versions, err := s.repo.ListVersions(ctx, params.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list versions: %w", err)
	}

	var current int64
	if latest := domain.LatestVersion(versions); latest != nil {
		current = latest.Version
	}

	switch {
	case params.Version == 0:
		params.Version = current + 1
	case params.Version <= current:
		return nil, fmt.Errorf("version %d must be greater than latest %d: %w", params.Version, current, domain.ErrVersionConflict)
	}

	// Step 3: Insert record MỚI; nếu writer khác lấy trùng số thì repo trả ErrVersionConflict
	v, err := s.repo.CreateVersion(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create version: %w", err)
	}
	return v, nil
}

// ListVersions returns every version of a document
func (s *documentService) ListVersions(ctx context.Context, documentID string) ([]*domain.LegalDocumentVersion, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	versions, err := s.repo.ListVersions(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list versions: %w", err)
	}
	return versions, nil
}
