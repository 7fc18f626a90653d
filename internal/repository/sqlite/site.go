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

// GetSiteInfo loads per-site settings by host name.
func (s *Store) GetSiteInfo(ctx context.Context, siteDomain string) (*domain.SiteInfo, error) {
	var info domain.SiteInfo
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT domain, robots, updated_at FROM site_info WHERE domain = ?`, siteDomain,
	).Scan(&info.Domain, &info.Robots, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get site info: %w", err)
	}
	info.UpdatedAt = unixMillisToTime(updatedAt)
	return &info, nil
}

// UpsertRobots sets the per-site robots.txt addition.
func (s *Store) UpsertRobots(ctx context.Context, siteDomain, robots string) (*domain.SiteInfo, error) {
	info := domain.SiteInfo{
		Domain:    siteDomain,
		Robots:    robots,
		UpdatedAt: unixMillisToTime(timeToUnixMillis(time.Now())),
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO site_info (domain, robots, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(domain) DO UPDATE SET
		    robots = excluded.robots,
		    updated_at = excluded.updated_at`,
		info.Domain, info.Robots, timeToUnixMillis(info.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert robots: %w", err)
	}
	return &info, nil
}

// CreateContactMessage stores a contact form submission.
func (s *Store) CreateContactMessage(ctx context.Context, params domain.CreateContactMessageParams) (*domain.ContactMessage, error) {
	m := domain.ContactMessage{
		ID:        uuid.New().String(),
		Name:      params.Name,
		Email:     params.Email,
		Subject:   params.Subject,
		Message:   params.Message,
		IP:        params.IP,
		CreatedAt: unixMillisToTime(timeToUnixMillis(time.Now())),
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, subject, message, ip, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.IP, timeToUnixMillis(m.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create contact message: %w", err)
	}
	return &m, nil
}

// CreateSiteLog appends a site log entry.
func (s *Store) CreateSiteLog(ctx context.Context, params domain.CreateSiteLogParams) (*domain.SiteLog, error) {
	entry := domain.SiteLog{
		ID:        uuid.New().String(),
		Level:     params.Level,
		Message:   params.Message,
		Data:      params.Data,
		CreatedAt: unixMillisToTime(timeToUnixMillis(time.Now())),
	}
	var data any
	if len(entry.Data) > 0 {
		data = []byte(entry.Data)
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO site_logs (id, level, message, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Level, entry.Message, data, timeToUnixMillis(entry.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("create site log: %w", err)
	}
	return &entry, nil
}

// ListSiteLogs returns the most recent site log entries.
func (s *Store) ListSiteLogs(ctx context.Context, limit int) ([]*domain.SiteLog, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, level, message, data, created_at FROM site_logs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list site logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.SiteLog
	for rows.Next() {
		var entry domain.SiteLog
		var data []byte
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.Level, &entry.Message, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("scan site log: %w", err)
		}
		if len(data) > 0 {
			entry.Data = json.RawMessage(data)
		}
		entry.CreatedAt = unixMillisToTime(createdAt)
		logs = append(logs, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate site logs: %w", err)
	}
	return logs, nil
}
