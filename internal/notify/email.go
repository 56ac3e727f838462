package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

const defaultFromName = "SEO Expert"

var errSenderNotConfigured = errors.New("notify: sendgrid client not configured")

// EmailSender delivers a single plain-text message.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is one notification e-mail. ReplyTo lets the recipient answer
// the lead directly.
type EmailMessage struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// SendGridConfig holds configuration for SendGrid.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// SendGridSender delivers notifications through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger *logging.Logger
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, logger *logging.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.TrimSpace(cfg.FromName)
	if name == "" {
		name = defaultFromName
	}
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(name, cfg.FromEmail),
		logger: logger,
	}
}

// Send posts msg to SendGrid. Any 4xx/5xx answer is an error.
func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	if s == nil || s.client == nil {
		return errSenderNotConfigured
	}

	response, err := s.client.SendWithContext(ctx, buildSendGridMail(s.from, msg))
	if err != nil {
		return fmt.Errorf("notify: sendgrid send failed: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error("sendgrid rejected lead notification", "status", response.StatusCode, "body", response.Body, "to", msg.To)
		return fmt.Errorf("notify: sendgrid returned status %d", response.StatusCode)
	}

	s.logger.Info("lead notification sent via sendgrid", "to", msg.To, "status", response.StatusCode)
	return nil
}

// buildSendGridMail renders the plain-text body as-is and as escaped <pre>
// HTML so clients that prefer HTML keep the line layout.
func buildSendGridMail(from *mail.Email, msg EmailMessage) *mail.SGMailV3 {
	htmlBody := "<pre>" + html.EscapeString(msg.Body) + "</pre>"
	m := mail.NewSingleEmail(from, msg.Subject, mail.NewEmail("", msg.To), msg.Body, htmlBody)
	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	return m
}

// StubEmailSender logs instead of sending. Used when SendGrid is not configured.
type StubEmailSender struct {
	logger *logging.Logger
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.logger.Info("lead notification not sent (email disabled)", "to", msg.To, "subject", msg.Subject, "reply_to", msg.ReplyTo)
	return nil
}
