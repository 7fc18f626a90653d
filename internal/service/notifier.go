package service

import (
	"context"

	"github.com/thatlq1812/sitetools/internal/logger"
)

// Alert is a message for site administrators
type Alert struct {
	Subject string
	Body    string
	Fields  map[string]string
}

// Notifier delivers admin alerts
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts as error-level log events for the log pipeline to pick up
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	event := n.log.Error().Str("subject", alert.Subject)
	for k, v := range alert.Fields {
		event = event.Str(k, v)
	}
	event.Str("body", alert.Body).Msg("admin alert")
	return nil
}
