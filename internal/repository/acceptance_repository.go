package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thatlq1812/sitetools/internal/domain"
)

const acceptanceColumns = `id, version_id, document_id, version, actor_id, ip, description, data, accepted_at`

type postgresAcceptanceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAcceptanceRepository(db *pgxpool.Pool) AcceptanceRepository {
	return &postgresAcceptanceRepository{db: db}
}

// CreateAcceptance always inserts a new row; repeated confirmations are kept
func (r *postgresAcceptanceRepository) CreateAcceptance(ctx context.Context, params domain.CreateAcceptanceParams) (*domain.LegalDocumentAcceptance, error) {
	if params.Version == nil {
		return nil, fmt.Errorf("version is required: %w", domain.ErrInvalidInput)
	}

	query := `
		INSERT INTO legal_document_acceptances (id, version_id, document_id, version, actor_id, ip, description, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + acceptanceColumns

	row := r.db.QueryRow(ctx, query,
		uuid.New().String(),
		params.Version.ID,
		params.Version.DocumentID,
		params.Version.Version,
		params.ActorID,
		params.IP,
		params.Description,
		jsonParam(params.Data),
	)

	acceptance, err := scanAcceptance(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create acceptance: %w", err)
	}
	return acceptance, nil
}

func (r *postgresAcceptanceRepository) ListAcceptancesByActor(ctx context.Context, actorID string) ([]*domain.LegalDocumentAcceptance, error) {
	return r.list(ctx, `SELECT `+acceptanceColumns+`
		FROM legal_document_acceptances
		WHERE actor_id = $1
		ORDER BY accepted_at DESC`, actorID)
}

func (r *postgresAcceptanceRepository) ListAcceptancesByDocument(ctx context.Context, documentID string) ([]*domain.LegalDocumentAcceptance, error) {
	return r.list(ctx, `SELECT `+acceptanceColumns+`
		FROM legal_document_acceptances
		WHERE document_id = $1
		ORDER BY accepted_at DESC`, documentID)
}

func (r *postgresAcceptanceRepository) HasAccepted(ctx context.Context, actorID, versionID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM legal_document_acceptances
			WHERE actor_id = $1 AND version_id = $2
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, actorID, versionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check acceptance: %w", err)
	}
	return exists, nil
}

func (r *postgresAcceptanceRepository) list(ctx context.Context, query string, arg string) ([]*domain.LegalDocumentAcceptance, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list acceptances: %w", err)
	}
	defer rows.Close()

	var acceptances []*domain.LegalDocumentAcceptance
	for rows.Next() {
		a, err := scanAcceptance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan acceptance: %w", err)
		}
		acceptances = append(acceptances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating acceptances: %w", err)
	}
	return acceptances, nil
}

func scanAcceptance(row pgx.Row) (*domain.LegalDocumentAcceptance, error) {
	var a domain.LegalDocumentAcceptance
	var data []byte
	err := row.Scan(
		&a.ID, &a.VersionID, &a.DocumentID, &a.Version,
		&a.ActorID, &a.IP, &a.Description, &data, &a.AcceptedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		a.Data = json.RawMessage(data)
	}
	return &a, nil
}

// jsonParam maps an empty payload to SQL NULL
func jsonParam(data json.RawMessage) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
