// AngelaMos | 2026
// recorders.go

package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/carterperez-dev/bookheaven/internal/events"
	"github.com/carterperez-dev/bookheaven/internal/mail"
)

var ErrMailDown = errors.New("mail provider unavailable")

type SentToken struct {
	To    string
	Name  string
	Token string
}

// Notifier records emailed tokens instead of sending them. Fail makes every
// send return ErrMailDown.
type Notifier struct {
	mu            sync.Mutex
	Verifications []SentToken
	Resets        []SentToken
	Contacts      []mail.ContactMessage
	Fail          bool
}

func (n *Notifier) SendVerification(_ context.Context, to, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Fail {
		return ErrMailDown
	}
	n.Verifications = append(n.Verifications, SentToken{To: to, Name: name, Token: token})
	return nil
}

func (n *Notifier) SendPasswordReset(_ context.Context, to, name, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Fail {
		return ErrMailDown
	}
	n.Resets = append(n.Resets, SentToken{To: to, Name: name, Token: token})
	return nil
}

func (n *Notifier) SendContact(_ context.Context, msg mail.ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.Fail {
		return ErrMailDown
	}
	n.Contacts = append(n.Contacts, msg)
	return nil
}

// LastVerification returns the newest verification token sent to email.
func (n *Notifier) LastVerification(email string) string {
	return last(n, n.Verifications, email)
}

func (n *Notifier) LastReset(email string) string {
	return last(n, n.Resets, email)
}

func last(n *Notifier, sent []SentToken, email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := len(sent) - 1; i >= 0; i-- {
		if sent[i].To == email {
			return sent[i].Token
		}
	}
	return ""
}

type Published struct {
	Type    string
	Payload any
}

type Publisher struct {
	mu     sync.Mutex
	Events []Published
	Err    error
}

func (p *Publisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, Published{Type: eventType, Payload: payload})
	return nil
}

var _ events.Publisher = (*Publisher)(nil)

// Metrics counts recorder calls.
type Metrics struct {
	mu           sync.Mutex
	AuthEvents   []string
	CartOps      []string
	MailFailures []string
	OrderTotals  []float64
}

func (m *Metrics) RecordAuthEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthEvents = append(m.AuthEvents, event)
}

func (m *Metrics) RecordCartOp(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CartOps = append(m.CartOps, op)
}

func (m *Metrics) RecordMailFailure(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MailFailures = append(m.MailFailures, kind)
}

func (m *Metrics) RecordOrderPlaced(total float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderTotals = append(m.OrderTotals, total)
}
