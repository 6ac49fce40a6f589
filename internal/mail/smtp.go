// Package mail delivers confirmation codes over SMTP.
package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/iliyamo/yamdb/internal/config"
	"github.com/iliyamo/yamdb/internal/queue"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends plain-text confirmation mails through a relay.
type SMTPMailer struct {
	addr     string
	from     string
	tokenURL string
	auth     smtp.Auth
	send     sendFunc
}

// NewSMTPMailer builds a mailer from cfg.  PLAIN auth is only used when a
// user is configured, so local catch-all relays work without credentials.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	m := &SMTPMailer{
		addr:     net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		from:     cfg.From,
		tokenURL: cfg.TokenURL,
		send:     smtp.SendMail,
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return m
}

// SendConfirmationCode implements queue.CodeMailer.  net/smtp has no context
// support, so cancellation is only honoured before the dial.
func (m *SMTPMailer) SendConfirmationCode(ctx context.Context, ev queue.ConfirmationCodeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(m.from, ev, m.tokenURL, time.Now())
	if err := m.send(m.addr, m.auth, m.from, []string{ev.Email}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, ev queue.ConfirmationCodeEvent, tokenURL string, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", ev.Email)
	b.WriteString("Subject: YaMDb confirmation code\r\n")
	fmt.Fprintf(&b, "Date: %s\r\n", now.UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Hello, %s!\r\n\r\n", ev.Username)
	fmt.Fprintf(&b, "Your confirmation code: %s\r\n\r\n", ev.Code)
	if tokenURL != "" {
		fmt.Fprintf(&b, "Exchange it for an access token at %s\r\n", tokenURL)
		b.WriteString("with your username and this code.\r\n")
	}
	b.WriteString("The code stops working as soon as a new one is requested.\r\n")
	return []byte(b.String())
}
