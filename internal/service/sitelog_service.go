package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/repository"
)

const (
	defaultSiteLogLimit = 100
	maxSiteLogLimit     = 1000
)

// SiteLogService appends and lists site log entries, alerting admins above a threshold
type SiteLogService interface {
	Log(ctx context.Context, params domain.CreateSiteLogParams) (*domain.SiteLog, error)
	List(ctx context.Context, limit int) ([]*domain.SiteLog, error)
}

type siteLogService struct {
	repo      repository.SiteRepository
	notifier  Notifier
	threshold int
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewSiteLogService creates a site log service. A threshold of 0 disables admin alerts.
func NewSiteLogService(repo repository.SiteRepository, notifier Notifier, threshold int, log *logger.Logger, m *metrics.Metrics) SiteLogService {
	return &siteLogService{
		repo:      repo,
		notifier:  notifier,
		threshold: threshold,
		log:       log,
		metrics:   m,
	}
}

func (s *siteLogService) Log(ctx context.Context, params domain.CreateSiteLogParams) (*domain.SiteLog, error) {
	params.Message = strings.TrimSpace(params.Message)
	if params.Message == "" {
		return nil, invalid(fmt.Errorf("message is required"))
	}
	if params.Level < 0 {
		return nil, invalid(fmt.Errorf("level must not be negative"))
	}
	if len(params.Data) > 0 && !json.Valid(params.Data) {
		return nil, invalid(fmt.Errorf("data must be valid JSON"))
	}

	entry, err := s.repo.CreateSiteLog(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("service: failed to create site log: %w", err)
	}

	level := domain.LevelName(entry.Level)
	s.metrics.RecordSiteLog(level)

	if s.threshold > 0 && entry.Level >= s.threshold && s.notifier != nil {
		alert := Alert{
			Subject: fmt.Sprintf("[%s] %s", level, entry.Message),
			Body:    string(entry.Data),
			Fields:  map[string]string{"site_log_id": entry.ID, "level": level},
		}
		// The entry is already stored; a failed alert is logged, not returned
		if err := s.notifier.Notify(ctx, alert); err != nil {
			s.log.Warn().Err(err).Str("site_log_id", entry.ID).Msg("failed to notify admins")
		}
	}

	return entry, nil
}

func (s *siteLogService) List(ctx context.Context, limit int) ([]*domain.SiteLog, error) {
	switch {
	case limit <= 0:
		limit = defaultSiteLogLimit
	case limit > maxSiteLogLimit:
		limit = maxSiteLogLimit
	}

	logs, err := s.repo.ListSiteLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list site logs: %w", err)
	}
	return logs, nil
}
