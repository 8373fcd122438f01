// AngelaMos | 2026
// service.go

package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/carterperez-dev/bookheaven/internal/mail"
	"github.com/carterperez-dev/bookheaven/internal/metrics"
)

var (
	ErrMailFailed   = errors.New("mail delivery failed")
	ErrEmptyMessage = errors.New("message is empty after sanitizing")
)

type Sender interface {
	SendContact(ctx context.Context, msg mail.ContactMessage) error
}

type Service struct {
	sender  Sender
	policy  *bluemonday.Policy
	metrics metrics.Recorder
}

func NewService(sender Sender, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Service{sender: sender, policy: bluemonday.StrictPolicy(), metrics: rec}
}

// Send strips markup from every field before the message is rendered.
func (s *Service) Send(ctx context.Context, req Request) error {
	msg := mail.ContactMessage{
		Name:    strings.TrimSpace(s.policy.Sanitize(req.Name)),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(s.policy.Sanitize(req.Message)),
	}
	if msg.Name == "" || msg.Message == "" {
		return ErrEmptyMessage
	}

	if err := s.sender.SendContact(ctx, msg); err != nil {
		s.metrics.RecordMailFailure("contact")
		return fmt.Errorf("%w: %v", ErrMailFailed, err)
	}
	return nil
}
