package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thatlq1812/sitetools/internal/domain"
)

const pgUniqueViolation = "23505"

type postgresDocumentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresDocumentRepository(db *pgxpool.Pool) DocumentRepository {
	return &postgresDocumentRepository{db: db}
}

func (r *postgresDocumentRepository) CreateDocument(ctx context.Context, params domain.CreateDocumentParams) (*domain.LegalDocument, error) {
	query := `
		INSERT INTO legal_documents (id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, title, description, created_at`

	var doc domain.LegalDocument
	err := r.db.QueryRow(ctx, query, params.ID, params.Title, params.Description).Scan(
		&doc.ID,
		&doc.Title,
		&doc.Description,
		&doc.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("document %s: %w", params.ID, domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return &doc, nil
}

func (r *postgresDocumentRepository) GetDocument(ctx context.Context, id string) (*domain.LegalDocument, error) {
	query := `
		SELECT id, title, description, created_at
		FROM legal_documents
		WHERE id = $1`

	var doc domain.LegalDocument
	err := r.db.QueryRow(ctx, query, id).Scan(&doc.ID, &doc.Title, &doc.Description, &doc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (r *postgresDocumentRepository) ListDocuments(ctx context.Context) ([]*domain.LegalDocument, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, created_at
		FROM legal_documents
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.LegalDocument
	for rows.Next() {
		var doc domain.LegalDocument
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Description, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

func (r *postgresDocumentRepository) CreateVersion(ctx context.Context, params domain.CreateVersionParams) (*domain.LegalDocumentVersion, error) {
	query := `
		INSERT INTO legal_document_versions (id, document_id, version, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, document_id, version, content, created_at`

	var v domain.LegalDocumentVersion
	err := r.db.QueryRow(ctx, query, uuid.New().String(), params.DocumentID, params.Version, params.Content).Scan(
		&v.ID,
		&v.DocumentID,
		&v.Version,
		&v.Content,
		&v.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%s version %d: %w", params.DocumentID, params.Version, domain.ErrVersionConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}
	return &v, nil
}

func (r *postgresDocumentRepository) GetVersion(ctx context.Context, documentID string, version int64) (*domain.LegalDocumentVersion, error) {
	query := `
		SELECT id, document_id, version, content, created_at
		FROM legal_document_versions
		WHERE document_id = $1 AND version = $2`

	var v domain.LegalDocumentVersion
	err := r.db.QueryRow(ctx, query, documentID, version).Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return &v, nil
}

func (r *postgresDocumentRepository) GetLatestVersion(ctx context.Context, documentID string) (*domain.LegalDocumentVersion, error) {
	query := `
		SELECT id, document_id, version, content, created_at
		FROM legal_document_versions
		WHERE document_id = $1
		ORDER BY version DESC, created_at DESC, id DESC
		LIMIT 1`

	var v domain.LegalDocumentVersion
	err := r.db.QueryRow(ctx, query, documentID).Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}
	return &v, nil
}

// ListVersions returns versions in no guaranteed order; use domain.LatestVersion to pick the latest
func (r *postgresDocumentRepository) ListVersions(ctx context.Context, documentID string) ([]*domain.LegalDocumentVersion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, version, content, created_at
		FROM legal_document_versions
		WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*domain.LegalDocumentVersion
	for rows.Next() {
		var v domain.LegalDocumentVersion
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Version, &v.Content, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}
	return versions, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
