package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a rendered email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// SMTPConfig holds relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer sends email through an authenticated SMTP relay.
//
// On ports other than 465 the connection is upgraded with STARTTLS before
// login. Credentials use PLAIN auth, which net/smtp refuses to send over an
// unencrypted connection to anything but localhost.
type SMTPMailer struct {
	dialer *gomail.Dialer
}

// NewSMTPMailer creates a mailer for the given relay.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}
	if cfg.Username != "" {
		d.Auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{dialer: d}
}

// Host returns the relay host.
func (m *SMTPMailer) Host() string {
	return m.dialer.Host
}

// Send delivers the email. gomail has no context support, so the send runs
// in its own goroutine and Send returns as soon as ctx is done.
//
// ctx bounds only the wait. gomail sets no deadline after the dial, so on a
// stalled relay the goroutine lingers until the connection fails, and the
// email may still go out after Send has returned ctx.Err().
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To)
	if email.ReplyTo != "" {
		msg.SetHeader("Reply-To", email.ReplyTo)
	}
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		msg.AddAlternative("text/html", email.HTML)
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send via %s: %w", m.dialer.Host, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send via %s: %w", m.dialer.Host, ctx.Err())
	}
}
