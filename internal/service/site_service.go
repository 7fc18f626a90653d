package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strings"

	"github.com/thatlq1812/sitetools/internal/domain"
	"github.com/thatlq1812/sitetools/internal/logger"
	"github.com/thatlq1812/sitetools/internal/metrics"
	"github.com/thatlq1812/sitetools/internal/repository"
	"github.com/thatlq1812/sitetools/pkg/validator"
)

// SiteService serves robots.txt and per-site settings
type SiteService interface {
	// Robots returns the global robots template followed by the host's own rules
	Robots(ctx context.Context, host string) (string, error)
	SetRobots(ctx context.Context, host, robots string) (*domain.SiteInfo, error)
}

type siteService struct {
	repo         repository.SiteRepository
	templatePath string
	log          *logger.Logger
}

// NewSiteService creates a site service. templatePath may be empty.
func NewSiteService(repo repository.SiteRepository, templatePath string, log *logger.Logger) SiteService {
	return &siteService{repo: repo, templatePath: templatePath, log: log}
}

func (s *siteService) Robots(ctx context.Context, host string) (string, error) {
	var b strings.Builder

	// Global part; a missing template contributes nothing
	if s.templatePath != "" {
		data, err := os.ReadFile(s.templatePath)
		switch {
		case err == nil:
			b.Write(data)
		case errors.Is(err, fs.ErrNotExist):
		default:
			s.log.Warn().Err(err).Str("path", s.templatePath).Msg("failed to read robots template")
		}
	}

	// Per-site part, keyed by host without port
	siteDomain := stripPort(host)
	if siteDomain == "" {
		return b.String(), nil
	}
	info, err := s.repo.GetSiteInfo(ctx, siteDomain)
	if err != nil {
		return "", fmt.Errorf("service: failed to get site info: %w", err)
	}
	if info != nil {
		b.WriteString(info.Robots)
	}

	return b.String(), nil
}

func (s *siteService) SetRobots(ctx context.Context, host, robots string) (*domain.SiteInfo, error) {
	if err := validator.ValidateDomain(host); err != nil {
		return nil, invalid(err)
	}

	info, err := s.repo.UpsertRobots(ctx, stripPort(host), robots)
	if err != nil {
		return nil, fmt.Errorf("service: failed to set robots: %w", err)
	}
	return info, nil
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSpace(host))
}

// ContactService stores contact form messages
type ContactService interface {
	Submit(ctx context.Context, params domain.CreateContactMessageParams) (*domain.ContactMessage, error)
}

// ContactOptions configures ContactService
type ContactOptions struct {
	// MailAlert notifies admins of every stored message
	MailAlert bool
	RateLimit RateLimitConfig
}

type contactService struct {
	repo     repository.SiteRepository
	notifier Notifier
	limiter  *KeyedRateLimiter
	opts     ContactOptions
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewContactService(repo repository.SiteRepository, notifier Notifier, opts ContactOptions, log *logger.Logger, m *metrics.Metrics) ContactService {
	return &contactService{
		repo:     repo,
		notifier: notifier,
		limiter:  NewKeyedRateLimiter(opts.RateLimit),
		opts:     opts,
		log:      log,
		metrics:  m,
	}
}

func (s *contactService) Submit(ctx context.Context, params domain.CreateContactMessageParams) (*domain.ContactMessage, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.Subject = strings.TrimSpace(params.Subject)

	if err := validator.ValidateContactMessage(validator.ContactMessage{
		Name:    params.Name,
		Email:   params.Email,
		Subject: params.Subject,
		Message: params.Message,
	}); err != nil {
		return nil, invalid(err)
	}

	if !s.limiter.Allow(params.IP) {
		return nil, fmt.Errorf("contact from %s: %w", params.IP, domain.ErrRateLimited)
	}

	msg, err := s.repo.CreateContactMessage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("service: failed to store contact message: %w", err)
	}
	s.metrics.RecordContactMessage()

	if s.opts.MailAlert && s.notifier != nil {
		alert := Alert{
			Subject: "Contact message: " + msg.Subject,
			Body:    msg.Message,
			Fields: map[string]string{
				"contact_id": msg.ID,
				"name":       msg.Name,
				"email":      msg.Email,
				"ip":         msg.IP,
			},
		}
		if err := s.notifier.Notify(ctx, alert); err != nil {
			s.log.Warn().Err(err).Str("contact_id", msg.ID).Msg("failed to notify admins")
		}
	}

	return msg, nil
}
