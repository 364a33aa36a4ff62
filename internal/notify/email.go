package notify

import (
	"context"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

// EmailNotifier relays success and error notifications to the practice owner
// by email via SendGrid. Informational notifications are intentionally not
// mailed; they only matter while the dashboard is open.
type EmailNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	to        string
	logger    *logging.Logger
}

// EmailConfig holds configuration for the SendGrid notifier.
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	To        string
}

// NewEmailNotifier creates a SendGrid-backed notifier. Returns nil when no
// API key or recipient is configured so callers can skip wiring it.
func NewEmailNotifier(cfg EmailConfig, logger *logging.Logger) *EmailNotifier {
	if cfg.APIKey == "" || cfg.To == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Lavenius"
	}
	return &EmailNotifier{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		to:        cfg.To,
		logger:    logger,
	}
}

func (n *EmailNotifier) Success(ctx context.Context, title, description string) {
	n.send(ctx, "✅ "+title, description)
}

func (n *EmailNotifier) Error(ctx context.Context, title, description string) {
	n.send(ctx, "⚠️ "+title, description)
}

func (n *EmailNotifier) Info(ctx context.Context, title, description string) {}

func (n *EmailNotifier) send(ctx context.Context, subject, body string) {
	if body == "" {
		body = subject
	}
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("", n.to)
	message := mail.NewSingleEmail(from, subject, to, body, body)

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		n.logger.Error("sendgrid send failed", "error", err, "to", n.to)
		return
	}
	if response.StatusCode >= 400 {
		n.logger.Error("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", n.to)
		return
	}
	n.logger.Info("notification email sent", "to", n.to, "subject", subject)
}

var _ Notifier = (*EmailNotifier)(nil)
