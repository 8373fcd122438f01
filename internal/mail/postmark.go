// AngelaMos | 2026
// postmark.go

package mail

import (
	"context"
	"fmt"

	"github.com/keighl/postmark"

	"github.com/carterperez-dev/bookheaven/internal/config"
)

type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

func NewPostmarkMailer(cfg config.MailConfig) *PostmarkMailer {
	return &PostmarkMailer{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   formatAddress(cfg.FromName, cfg.FromAddress),
	}
}

func (m *PostmarkMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       formatAddress(msg.ToName, msg.To),
		ReplyTo:  msg.ReplyTo,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		HtmlBody: msg.HTML,
		TextBody: msg.Text,
	})
	if err != nil {
		return fmt.Errorf("postmark send: %w", err)
	}
	if res.ErrorCode != 0 {
		return fmt.Errorf("postmark send: code %d: %s", res.ErrorCode, res.Message)
	}
	return nil
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
