package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thatlq1812/sitetools/internal/domain"
)

// CreateDocument inserts a legal document.
func (s *Store) CreateDocument(ctx context.Context, params domain.CreateDocumentParams) (*domain.LegalDocument, error) {
	doc := domain.LegalDocument{
		ID:          params.ID,
		Title:       params.Title,
		Description: params.Description,
		CreatedAt:   unixMillisToTime(timeToUnixMillis(time.Now())),
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO legal_documents (id, title, description, created_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Description, timeToUnixMillis(doc.CreatedAt),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("document %s: %w", params.ID, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return &doc, nil
}

// GetDocument loads a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.LegalDocument, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, title, description, created_at FROM legal_documents WHERE id = ?`, id)

	var doc domain.LegalDocument
	var createdAt int64
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Description, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	doc.CreatedAt = unixMillisToTime(createdAt)
	return &doc, nil
}

// ListDocuments returns all documents ordered by id.
func (s *Store) ListDocuments(ctx context.Context) ([]*domain.LegalDocument, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, title, description, created_at FROM legal_documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.LegalDocument
	for rows.Next() {
		var doc domain.LegalDocument
		var createdAt int64
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CreatedAt = unixMillisToTime(createdAt)
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// CreateVersion inserts a document version.
func (s *Store) CreateVersion(ctx context.Context, params domain.CreateVersionParams) (*domain.LegalDocumentVersion, error) {
	v := domain.LegalDocumentVersion{
		ID:         uuid.New().String(),
		DocumentID: params.DocumentID,
		Version:    params.Version,
		Content:    params.Content,
		CreatedAt:  unixMillisToTime(timeToUnixMillis(time.Now())),
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO legal_document_versions (id, document_id, version, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		v.ID, v.DocumentID, v.Version, v.Content, timeToUnixMillis(v.CreatedAt),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%s version %d: %w", params.DocumentID, params.Version, domain.ErrVersionConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}
	return &v, nil
}

// GetVersion loads one exact version of a document.
func (s *Store) GetVersion(ctx context.Context, documentID string, version int64) (*domain.LegalDocumentVersion, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, document_id, version, content, created_at
		 FROM legal_document_versions
		 WHERE document_id = ? AND version = ?`,
		documentID, version,
	)

	v, err := scanVersion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}

// GetLatestVersion returns the highest-numbered version, or nil when the document has none.
func (s *Store) GetLatestVersion(ctx context.Context, documentID string) (*domain.LegalDocumentVersion, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, document_id, version, content, created_at
		 FROM legal_document_versions
		 WHERE document_id = ?
		 ORDER BY version DESC, created_at DESC, id DESC
		 LIMIT 1`,
		documentID,
	)

	v, err := scanVersion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest version: %w", err)
	}
	return v, nil
}

// ListVersions returns every version of a document, unordered.
func (s *Store) ListVersions(ctx context.Context, documentID string) ([]*domain.LegalDocumentVersion, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, document_id, version, content, created_at
		 FROM legal_document_versions
		 WHERE document_id = ?`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []*domain.LegalDocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVersion(row rowScanner) (*domain.LegalDocumentVersion, error) {
	var v domain.LegalDocumentVersion
	var createdAt int64
	if err := row.Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content, &createdAt); err != nil {
		return nil, err
	}
	v.CreatedAt = unixMillisToTime(createdAt)
	return &v, nil
}
