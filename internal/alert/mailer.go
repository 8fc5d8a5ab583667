package alert

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Mailer is the out-of-band channel for critical alerts and digests.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// sendTimeout caps one full SMTP exchange. The dispatcher calls Send inline
// from the detection path, so a stalled relay must never hold the caller
// longer than this.
const sendTimeout = 10 * time.Second

// SMTPMailer delivers over plain SMTP, upgrading to STARTTLS when the server
// offers it. Authentication is optional; many firm deployments relay through
// an internal unauthenticated host.
type SMTPMailer struct {
	Host string
	Port int
	From string
	User string
	Pass string
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	// The deadline covers the whole exchange, greeting included. Cancelling
	// the context expires it early so no read or write outlives the caller.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to read greeting from %s: %w", addr, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("failed to start TLS with %s: %w", addr, err)
		}
	}

	if m.User != "" {
		auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate with %s: %w", addr, err)
		}
	}

	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := c.Mail(m.From); err != nil {
		return fmt.Errorf("failed to send MAIL FROM to %s: %w", addr, err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("failed to send RCPT TO to %s: %w", addr, err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to open DATA with %s: %w", addr, err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message to %s: %w", addr, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message to %s: %w", addr, err)
	}
	return c.Quit()
}

// Directory resolves a user's deliverable email address. Backed by static
// configuration; user management lives outside this service.
type Directory map[string]string

func (d Directory) EmailFor(userID string) (string, bool) {
	addr, ok := d[userID]
	return addr, ok && addr != ""
}