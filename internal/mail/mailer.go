// AngelaMos | 2026
// mailer.go

package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Deeazer/company-crm/internal/config"
)

var ErrNotConfigured = errors.New("smtp host not configured")

// Sender delivers a rendered message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPMailer struct {
	sender Sender
	from   string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	var sender Sender
	if cfg.Host != "" {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		d.SSL = cfg.SSL
		sender = d
	}

	return &SMTPMailer{sender: sender, from: cfg.From}
}

func NewMailerWithSender(sender Sender, from string) *SMTPMailer {
	return &SMTPMailer{sender: sender, from: from}
}

func (m *SMTPMailer) SendPasswordReset(
	ctx context.Context,
	msg PasswordResetMessage,
) error {
	if m.sender == nil {
		return ErrNotConfigured
	}

	if strings.EqualFold(msg.To, m.from) {
		return fmt.Errorf("send password reset: recipient equals sender")
	}

	text, html, err := RenderPasswordReset(msg)
	if err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", passwordResetSubject)
	gm.SetBody("text/plain", text)
	gm.AddAlternative("text/html", html)

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.sender.DialAndSend(gm); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}

	return nil
}
