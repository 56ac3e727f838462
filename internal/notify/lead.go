package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/seo-expert-api/internal/leads"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

const sendTimeout = 10 * time.Second

// LeadNotifier e-mails the sales inbox whenever a lead is stored.
type LeadNotifier struct {
	email     EmailSender
	recipient string
	logger    *logging.Logger
}

// NewLeadNotifier returns nil when there is no sender or recipient.
func NewLeadNotifier(email EmailSender, recipient string, logger *logging.Logger) *LeadNotifier {
	recipient = strings.TrimSpace(recipient)
	if email == nil || recipient == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{email: email, recipient: recipient, logger: logger}
}

// NotifyLeadCreated sends the lead summary. The send outlives request
// cancellation but is bounded by its own timeout.
func (n *LeadNotifier) NotifyLeadCreated(ctx context.Context, id string, lead *leads.Lead) error {
	if n == nil || lead == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	msg := EmailMessage{
		To:      n.recipient,
		ReplyTo: lead.Email,
		Subject: fmt.Sprintf("New lead: %s", lead.Name),
		Body:    formatLead(id, lead),
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: lead %s: %w", id, err)
	}
	n.logger.Debug("lead notification sent", "id", id)
	return nil
}

func formatLead(id string, lead *leads.Lead) string {
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}
	optional := func(label string, value *string) {
		if value != nil && strings.TrimSpace(*value) != "" {
			line(label, *value)
		}
	}

	line("Name", lead.Name)
	line("Email", lead.Email)
	optional("Phone", lead.Phone)
	optional("Company", lead.Company)
	optional("Website", lead.Website)
	optional("Service interest", lead.ServiceInterest)
	optional("Budget", lead.Budget)
	optional("Source", lead.Source)
	optional("Message", lead.Message)
	line("Lead ID", id)
	return b.String()
}
