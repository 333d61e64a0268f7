// Package notify delivers out-of-band messages (share invitations, password
// reset links). Delivery is fire-and-forget: the core never blocks on it and
// failures are only logged.
package notify

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/kmehta-dev/drivehub/internal/config"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends plain-text mail through a configured relay.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

// LogMailer writes would-be mail to the log. Used when SMTP is not
// configured, which keeps development environments working.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("mail (not sent) to=%s subject=%q", to, subject)
	return nil
}

// FromConfig picks the SMTP mailer when a host is configured and the log
// mailer otherwise.
func FromConfig(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr: cfg.Host + ":" + cfg.Port,
		from: cfg.From,
		auth: auth,
	}
}
