package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thatlq1812/sitetools/internal/domain"
)

type postgresSiteRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSiteRepository(db *pgxpool.Pool) SiteRepository {
	return &postgresSiteRepository{db: db}
}

func (r *postgresSiteRepository) GetSiteInfo(ctx context.Context, siteDomain string) (*domain.SiteInfo, error) {
	var info domain.SiteInfo
	err := r.db.QueryRow(ctx, `
		SELECT domain, robots, updated_at
		FROM site_info
		WHERE domain = $1`, siteDomain).Scan(&info.Domain, &info.Robots, &info.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site info: %w", err)
	}
	return &info, nil
}

func (r *postgresSiteRepository) UpsertRobots(ctx context.Context, siteDomain, robots string) (*domain.SiteInfo, error) {
	query := `
		INSERT INTO site_info (domain, robots, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (domain) DO UPDATE SET
			robots = EXCLUDED.robots,
			updated_at = NOW()
		RETURNING domain, robots, updated_at`

	var info domain.SiteInfo
	if err := r.db.QueryRow(ctx, query, siteDomain, robots).Scan(&info.Domain, &info.Robots, &info.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert robots: %w", err)
	}
	return &info, nil
}

func (r *postgresSiteRepository) CreateContactMessage(ctx context.Context, params domain.CreateContactMessageParams) (*domain.ContactMessage, error) {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, ip)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, email, subject, message, ip, created_at`

	var m domain.ContactMessage
	err := r.db.QueryRow(ctx, query,
		uuid.New().String(), params.Name, params.Email, params.Subject, params.Message, params.IP,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.IP, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact message: %w", err)
	}
	return &m, nil
}

func (r *postgresSiteRepository) CreateSiteLog(ctx context.Context, params domain.CreateSiteLogParams) (*domain.SiteLog, error) {
	query := `
		INSERT INTO site_logs (id, level, message, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, level, message, data, created_at`

	var entry domain.SiteLog
	var data []byte
	err := r.db.QueryRow(ctx, query, uuid.New().String(), params.Level, params.Message, jsonParam(params.Data)).
		Scan(&entry.ID, &entry.Level, &entry.Message, &data, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create site log: %w", err)
	}
	if len(data) > 0 {
		entry.Data = json.RawMessage(data)
	}
	return &entry, nil
}

func (r *postgresSiteRepository) ListSiteLogs(ctx context.Context, limit int) ([]*domain.SiteLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, level, message, data, created_at
		FROM site_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list site logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.SiteLog
	for rows.Next() {
		var entry domain.SiteLog
		var data []byte
		if err := rows.Scan(&entry.ID, &entry.Level, &entry.Message, &data, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan site log: %w", err)
		}
		if len(data) > 0 {
			entry.Data = json.RawMessage(data)
		}
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating site logs: %w", err)
	}
	return logs, nil
}
