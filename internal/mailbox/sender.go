package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"mailtriage/internal/config"
)

// Sender sends plain-text replies over an authenticated SMTP session
type Sender struct {
	addr     string
	host     string
	username string
	password string
}

// NewSender creates a sender for the configured mail account
func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		addr:     cfg.SMTPServer + ":" + cfg.SMTPPort,
		host:     cfg.SMTPServer,
		username: cfg.EmailUser,
		password: cfg.EmailPass,
	}
}

// Send delivers exactly one plain-text message. The session is closed on
// every exit path; there is no retry or queueing.
func (s *Sender) Send(ctx context.Context, to, subject, body string) error {
	if s.username == "" || s.password == "" {
		return &AuthError{Op: "smtp auth", Err: errCredentialsMissing}
	}

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return &TransportError{Op: "smtp dial " + s.addr, Err: err}
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return &TransportError{Op: "smtp handshake", Err: err}
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
		return &TransportError{Op: "smtp starttls", Err: err}
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return &AuthError{Op: "smtp auth", Err: err}
	}

	if err := client.Mail(s.username); err != nil {
		return &TransportError{Op: "smtp mail from", Err: err}
	}
	if err := client.Rcpt(to); err != nil {
		return &TransportError{Op: "smtp rcpt to", Err: err}
	}

	writer, err := client.Data()
	if err != nil {
		return &TransportError{Op: "smtp data", Err: err}
	}
	if _, err := writer.Write([]byte(composeMessage(s.username, to, subject, body))); err != nil {
		return &TransportError{Op: "smtp write body", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &TransportError{Op: "smtp close body", Err: err}
	}

	if err := client.Quit(); err != nil {
		return &TransportError{Op: "smtp quit", Err: err}
	}
	return nil
}

// composeMessage renders the RFC 822 envelope for a plain-text reply
func composeMessage(from, to, subject, body string) string {
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.String()
}
