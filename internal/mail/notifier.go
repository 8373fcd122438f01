// AngelaMos | 2026
// notifier.go

package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/carterperez-dev/bookheaven/internal/config"
	"github.com/carterperez-dev/bookheaven/internal/events"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
)

// Notifier turns account and order events into rendered messages.
type Notifier struct {
	mailer          Mailer
	renderer        *Renderer
	cfg             config.MailConfig
	verificationTTL time.Duration
	resetTTL        time.Duration
	metrics         metrics.Recorder
}

type Option func(*Notifier)

func WithTokenTTLs(verification, reset time.Duration) Option {
	return func(n *Notifier) {
		n.verificationTTL = verification
		n.resetTTL = reset
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(n *Notifier) { n.metrics = r }
}

func NewNotifier(mailer Mailer, cfg config.MailConfig, opts ...Option) (*Notifier, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	n := &Notifier{
		mailer:          mailer,
		renderer:        renderer,
		cfg:             cfg,
		verificationTTL: 24 * time.Hour,
		resetTTL:        time.Hour,
		metrics:         metrics.Nop{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

type tokenMail struct {
	Name      string
	Link      string
	ExpiresIn string
}

func (n *Notifier) SendVerification(ctx context.Context, to, name, token string) error {
	return n.send(ctx, TemplateVerifyEmail, Message{
		To:      to,
		ToName:  name,
		Subject: "Verify Your Book Heaven Email Address",
		Tag:     "verification",
	}, tokenMail{
		Name:      name,
		Link:      n.link("/verify-email", token),
		ExpiresIn: humanDuration(n.verificationTTL),
	})
}

func (n *Notifier) SendPasswordReset(ctx context.Context, to, name, token string) error {
	return n.send(ctx, TemplateResetPassword, Message{
		To:      to,
		ToName:  name,
		Subject: "Reset Your Book Heaven Password",
		Tag:     "password-reset",
	}, tokenMail{
		Name:      name,
		Link:      n.link("/reset-password", token),
		ExpiresIn: humanDuration(n.resetTTL),
	})
}

type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

func (n *Notifier) SendContact(ctx context.Context, c ContactMessage) error {
	return n.send(ctx, TemplateContact, Message{
		To:      n.cfg.ContactRecipient,
		ReplyTo: c.Email,
		Subject: "Contact Message from " + c.Name,
		Tag:     "contact",
	}, c)
}

func (n *Notifier) SendOrderConfirmation(ctx context.Context, o events.OrderPlaced) error {
	return n.send(ctx, TemplateOrderConfirmation, Message{
		To:      o.Email,
		ToName:  o.RecipientName,
		Subject: "Your Book Heaven order " + o.OrderID,
		Tag:     "order-confirmation",
	}, o)
}

// HandleOrderPlaced is the events.HandlerFunc for order.placed.
func (n *Notifier) HandleOrderPlaced(ctx context.Context, e events.Envelope) error {
	var o events.OrderPlaced
	if err := e.Decode(&o); err != nil {
		return err
	}
	if err := n.SendOrderConfirmation(ctx, o); err != nil {
		n.metrics.RecordMailFailure("order_confirmation")
		return err
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, name string, msg Message, data any) error {
	html, text, err := n.renderer.Render(name, data)
	if err != nil {
		return err
	}
	msg.HTML, msg.Text = html, text

	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	return nil
}

func (n *Notifier) link(path, token string) string {
	return strings.TrimRight(n.cfg.FrontendURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
