// AngelaMos | 2026
// mail.go

package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carterperez-dev/bookheaven/internal/config"
)

type Message struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
	Tag     string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by cfg.Provider.
func New(cfg config.MailConfig, logger *slog.Logger) (Mailer, error) {
	switch cfg.Provider {
	case config.MailProviderLog:
		return NewLogMailer(logger), nil
	case config.MailProviderPostmark:
		return NewPostmarkMailer(cfg), nil
	case config.MailProviderSendgrid:
		return NewSendgridMailer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// LogMailer writes messages to the log instead of delivering them. Links
// in the text body stay clickable in a local terminal.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "mail not delivered (log provider)",
		"to", msg.To,
		"subject", msg.Subject,
		"tag", msg.Tag,
		"text", msg.Text,
	)
	return nil
}
