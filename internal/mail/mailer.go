package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/teamspace/teamspace-server/internal/config"
)

// Mailer sends application email. Handlers depend on this interface so
// tests can substitute a recording implementation.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send sends a plain-text email
func (s *SMTPMailer) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)

	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	return nil
}

// ActivationSubject is the subject line of the account activation email
const ActivationSubject = "Activate your account"

// ActivationBody builds the activation email body. The link is keyed by
// the tenant subdomain and the new user's numeric id.
func ActivationBody(subdomain, baseDomain string, userID int64) string {
	link := fmt.Sprintf("http://%s.%s/api/v1/users/activate/%d", subdomain, baseDomain, userID)
	return fmt.Sprintf("Welcome!\n\nPlease activate your account by visiting:\n\n%s\n", link)
}
