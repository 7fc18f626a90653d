package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thatlq1812/sitetools/internal/domain"
)

const acceptanceColumns = `id, version_id, document_id, version, actor_id, ip, description, data, accepted_at`

// CreateAcceptance appends an acceptance row. No duplicate check is made.
func (s *Store) CreateAcceptance(ctx context.Context, params domain.CreateAcceptanceParams) (*domain.LegalDocumentAcceptance, error) {
	if params.Version == nil {
		return nil, fmt.Errorf("version is required: %w", domain.ErrInvalidInput)
	}

	a := domain.LegalDocumentAcceptance{
		ID:          uuid.New().String(),
		VersionID:   params.Version.ID,
		DocumentID:  params.Version.DocumentID,
		Version:     params.Version.Version,
		ActorID:     params.ActorID,
		IP:          params.IP,
		Description: params.Description,
		Data:        params.Data,
		AcceptedAt:  unixMillisToTime(timeToUnixMillis(time.Now())),
	}

	var data any
	if len(a.Data) > 0 {
		data = []byte(a.Data)
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO legal_document_acceptances (`+acceptanceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.VersionID, a.DocumentID, a.Version, nullString(a.ActorID), a.IP, a.Description, data,
		timeToUnixMillis(a.AcceptedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create acceptance: %w", err)
	}
	return &a, nil
}

// ListAcceptancesByActor returns an actor's acceptances, newest first.
func (s *Store) ListAcceptancesByActor(ctx context.Context, actorID string) ([]*domain.LegalDocumentAcceptance, error) {
	return s.listAcceptances(ctx,
		`SELECT `+acceptanceColumns+` FROM legal_document_acceptances WHERE actor_id = ? ORDER BY accepted_at DESC, rowid DESC`,
		actorID)
}

// ListAcceptancesByDocument returns every acceptance of any version of a document, newest first.
func (s *Store) ListAcceptancesByDocument(ctx context.Context, documentID string) ([]*domain.LegalDocumentAcceptance, error) {
	return s.listAcceptances(ctx,
		`SELECT `+acceptanceColumns+` FROM legal_document_acceptances WHERE document_id = ? ORDER BY accepted_at DESC, rowid DESC`,
		documentID)
}

// HasAccepted reports whether the actor accepted the version at least once.
func (s *Store) HasAccepted(ctx context.Context, actorID, versionID string) (bool, error) {
	var exists int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM legal_document_acceptances WHERE actor_id = ? AND version_id = ?)`,
		actorID, versionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check acceptance: %w", err)
	}
	return exists != 0, nil
}

func (s *Store) listAcceptances(ctx context.Context, query string, arg string) ([]*domain.LegalDocumentAcceptance, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list acceptances: %w", err)
	}
	defer rows.Close()

	var acceptances []*domain.LegalDocumentAcceptance
	for rows.Next() {
		var a domain.LegalDocumentAcceptance
		var actorID sql.NullString
		var data []byte
		var acceptedAt int64
		if err := rows.Scan(
			&a.ID, &a.VersionID, &a.DocumentID, &a.Version,
			&actorID, &a.IP, &a.Description, &data, &acceptedAt,
		); err != nil {
			return nil, fmt.Errorf("scan acceptance: %w", err)
		}
		if actorID.Valid {
			id := actorID.String
			a.ActorID = &id
		}
		if len(data) > 0 {
			a.Data = json.RawMessage(data)
		}
		a.AcceptedAt = unixMillisToTime(acceptedAt)
		acceptances = append(acceptances, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate acceptances: %w", err)
	}
	return acceptances, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
