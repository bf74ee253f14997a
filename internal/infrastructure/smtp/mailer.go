package smtp

import (
	"github.com/catalog-accounts/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	from   string
	dialer *gomail.Dialer
}

// NewMailer builds an SMTP mailer. Authentication is only attempted when
// SMTP_USERNAME is set, which keeps local catch-all servers working.
func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		from:   cfg.SMTPFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := gomail.NewMessage()
	m.compose(msg, to, subject, body)
	return m.dialer.DialAndSend(msg)
}

func (m *mailer) compose(msg *gomail.Message, to, subject, body string) {
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
}
