package notify

import (
	"context"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// Notifier surfaces short user-facing notifications. Implementations can be
// swapped (log, email, dashboard feed) without changing callers.
type Notifier interface {
	Success(ctx context.Context, title, description string)
	Error(ctx context.Context, title, description string)
	Info(ctx context.Context, title, description string)
}

// LogNotifier writes notifications to the structured log. It is always safe
// to use and is the default wiring in development.
type LogNotifier struct {
	logger *logging.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logging.Logger) *LogNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(ctx context.Context, title, description string) {
	n.logger.Info("notification", "kind", "success", "title", title, "description", description)
}

func (n *LogNotifier) Error(ctx context.Context, title, description string) {
	n.logger.Warn("notification", "kind", "error", "title", title, "description", description)
}

func (n *LogNotifier) Info(ctx context.Context, title, description string) {
	n.logger.Info("notification", "kind", "info", "title", title, "description", description)
}

// MultiNotifier fans a notification out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Success(ctx context.Context, title, description string) {
	for _, n := range m {
		n.Success(ctx, title, description)
	}
}

func (m MultiNotifier) Error(ctx context.Context, title, description string) {
	for _, n := range m {
		n.Error(ctx, title, description)
	}
}

func (m MultiNotifier) Info(ctx context.Context, title, description string) {
	for _, n := range m {
		n.Info(ctx, title, description)
	}
}

// Ensure interface compliance
var _ Notifier = (*LogNotifier)(nil)
var _ Notifier = (MultiNotifier)(nil)
