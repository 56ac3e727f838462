package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/seo-expert-api/internal/leads"
	"github.com/wolfman30/seo-expert-api/pkg/logging"
)

type captureSender struct {
	msgs   []EmailMessage
	err    error
	ctxErr error
}

func (c *captureSender) Send(ctx context.Context, msg EmailMessage) error {
	c.ctxErr = ctx.Err()
	c.msgs = append(c.msgs, msg)
	return c.err
}

func strPtr(s string) *string { return &s }

func TestNewLeadNotifierRequiresSenderAndRecipient(t *testing.T) {
	assert.Nil(t, NewLeadNotifier(nil, "sales@example.com", nil))
	assert.Nil(t, NewLeadNotifier(&captureSender{}, "  ", nil))
	assert.NotNil(t, NewLeadNotifier(&captureSender{}, "sales@example.com", nil))
}

func TestNotifyLeadCreated(t *testing.T) {
	sender := &captureSender{}
	n := NewLeadNotifier(sender, "sales@example.com", logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lead := &leads.Lead{
		Name:    "Ann",
		Email:   "ann@example.com",
		Company: strPtr("Acme"),
		Budget:  strPtr(""),
		Source:  strPtr("website"),
	}
	require.NoError(t, n.NotifyLeadCreated(ctx, "abc123", lead))

	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, "sales@example.com", msg.To)
	assert.Equal(t, "ann@example.com", msg.ReplyTo)
	assert.Equal(t, "New lead: Ann", msg.Subject)
	assert.Contains(t, msg.Body, "Company: Acme")
	assert.Contains(t, msg.Body, "Lead ID: abc123")
	assert.False(t, strings.Contains(msg.Body, "Budget"), "blank optional fields are omitted")
	assert.NoError(t, sender.ctxErr, "send must not inherit request cancellation")
}

func TestNotifyLeadCreatedWrapsError(t *testing.T) {
	sender := &captureSender{err: errors.New("quota exceeded")}
	n := NewLeadNotifier(sender, "sales@example.com", logging.Discard())

	err := n.NotifyLeadCreated(context.Background(), "abc", &leads.Lead{Name: "Ann", Email: "a@b.co"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNilLeadNotifierIsNoop(t *testing.T) {
	var n *LeadNotifier
	assert.NoError(t, n.NotifyLeadCreated(context.Background(), "id", &leads.Lead{}))
}
