package notification

import (
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk/internal/config"
)

// Mailer sends notification emails. Absence of SMTP configuration is a
// valid state, not an error: the no-op implementation logs the intent.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// NewMailer selects the SMTP or no-op implementation from configuration.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if !cfg.Configured() {
		return &noopMailer{logger: logger}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (m *smtpMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

type noopMailer struct {
	logger *zap.Logger
}

func (m *noopMailer) Send(to []string, subject, body string) error {
	m.logger.Info("email not sent (no SMTP configured)",
		zap.Strings("to", to),
		zap.String("subject", subject))
	return nil
}
