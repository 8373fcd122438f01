// AngelaMos | 2026
// notifier_test.go

package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/events"
)

type recordingMailer struct {
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestNotifier(t *testing.T, m Mailer) *Notifier {
	t.Helper()

	n, err := NewNotifier(m, config.MailConfig{
		FrontendURL:      "http://localhost:5173/",
		ContactRecipient: "support@bookheaven.dev",
	}, WithTokenTTLs(24*time.Hour, time.Hour))
	require.NoError(t, err)
	return n
}

func assertGolden(t *testing.T, name string, msg Message) {
	t.Helper()

	g := goldie.New(t)
	g.Assert(t, name+".html", []byte(msg.HTML))
	g.Assert(t, name+".txt", []byte(msg.Text))
}

func TestSendVerification(t *testing.T) {
	m := &recordingMailer{}
	n := newTestNotifier(t, m)

	require.NoError(t, n.SendVerification(context.Background(), "ada@example.com", "Ada", "abc123"))

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Verify Your Book Heaven Email Address", msg.Subject)
	assertGolden(t, TemplateVerifyEmail, msg)
}

func TestSendPasswordReset(t *testing.T) {
	m := &recordingMailer{}
	n := newTestNotifier(t, m)

	require.NoError(t, n.SendPasswordReset(context.Background(), "ada@example.com", "Ada", "abc123"))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "Reset Your Book Heaven Password", m.sent[0].Subject)
	assertGolden(t, TemplateResetPassword, m.sent[0])
}

func TestSendContact(t *testing.T) {
	m := &recordingMailer{}
	n := newTestNotifier(t, m)

	err := n.SendContact(context.Background(), ContactMessage{
		Name:    "Grace",
		Email:   "grace@example.com",
		Message: "Where is my book?",
	})
	require.NoError(t, err)

	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "support@bookheaven.dev", msg.To)
	assert.Equal(t, "grace@example.com", msg.ReplyTo)
	assert.Equal(t, "Contact Message from Grace", msg.Subject)
	assertGolden(t, TemplateContact, msg)
}

func TestHandleOrderPlaced(t *testing.T) {
	m := &recordingMailer{}
	n := newTestNotifier(t, m)

	env, err := events.NewEnvelope(events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:       "665f1c2e8b3a4d0012345678",
		Email:         "ada@example.com",
		RecipientName: "Ada Lovelace",
		Items: []events.OrderLine{
			{Name: "Dune", Price: 10, Quantity: 2},
			{Name: "Emma", Price: 5.5, Quantity: 1},
		},
		TotalPrice: 25.5,
	})
	require.NoError(t, err)

	require.NoError(t, n.HandleOrderPlaced(context.Background(), env))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "ada@example.com", m.sent[0].To)
	assertGolden(t, TemplateOrderConfirmation, m.sent[0])
}

func TestSendPropagatesMailerError(t *testing.T) {
	n := newTestNotifier(t, &recordingMailer{err: errors.New("provider down")})

	err := n.SendVerification(context.Background(), "ada@example.com", "Ada", "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestHTMLEscapesUserInput(t *testing.T) {
	m := &recordingMailer{}
	n := newTestNotifier(t, m)

	err := n.SendContact(context.Background(), ContactMessage{
		Name:    "Eve",
		Email:   "eve@example.com",
		Message: "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.NotContains(t, m.sent[0].HTML, "<script>")
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{24 * time.Hour, "24 hours"},
		{time.Hour, "1 hour"},
		{30 * time.Minute, "30 minutes"},
		{90 * time.Second, "1m30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, humanDuration(tt.in))
	}
}

func TestNewSelectsProvider(t *testing.T) {
	m, err := New(config.MailConfig{Provider: config.MailProviderLog}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = New(config.MailConfig{Provider: config.MailProviderSendgrid, SendgridAPIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendgridMailer{}, m)

	m, err = New(config.MailConfig{Provider: config.MailProviderPostmark, PostmarkServerToken: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &PostmarkMailer{}, m)

	_, err = New(config.MailConfig{Provider: "pigeon"}, nil)
	assert.Error(t, err)
}
