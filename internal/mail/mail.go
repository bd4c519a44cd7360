// Package mail sends the password-reset email. Delivery failure is a
// correctness problem for the reset flow, so errors propagate to the
// caller instead of being swallowed.
package mail

import (
	"errors"
	"fmt"
	"net/smtp"
)

// ErrNotConfigured is returned when the SMTP transport has no credentials.
var ErrNotConfigured = errors.New("mail transport not configured")

// Mailer delivers a password-reset link to a recipient.
type Mailer interface {
	SendPasswordReset(to, link string) error
}

// SMTPMailer sends reset mail over authenticated SMTP (STARTTLS ports).
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

func NewSMTPMailer(host, port, username, password, sender string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, Username: username, Password: password, Sender: sender}
}

// Configured reports whether the transport has credentials to send with.
func (m *SMTPMailer) Configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != ""
}

func (m *SMTPMailer) SendPasswordReset(to, link string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	body := fmt.Sprintf("To reset your password, visit the following link:\r\n%s\r\n\r\n"+
		"If you did not make this request then simply ignore this email and no changes will be made.\r\n", link)
	msg := []byte("From: " + m.Sender + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: Password Reset Request\r\n" +
		"\r\n" + body)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(m.Host+":"+m.Port, auth, m.Sender, []string{to}, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
