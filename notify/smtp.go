// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"github.com/danielhkuo/quickly-vote/cliparse"
)

const smtpTimeout = 15 * time.Second

// SMTPNotifier sends plain-text mail through an SMTP relay. STARTTLS is used
// when the server offers it.
type SMTPNotifier struct {
	cfg cliparse.SMTPConfig
	now func() time.Time
}

func NewSMTPNotifier(cfg cliparse.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, now: time.Now}
}

func (n *SMTPNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(`Hello,

your verification code for %s is:

    %s

Enter this code on the verification page to finish registering.

If you did not register, you can ignore this email.
`, n.cfg.FromName, code)
	return n.send(ctx, email, "Your verification code for "+n.cfg.FromName, body)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, email, code string) error {
	body := fmt.Sprintf(`Hello,

your code to reset your %s password is:

    %s

If you did not ask for a new password, you can ignore this email.
`, n.cfg.FromName, code)
	return n.send(ctx, email, n.cfg.FromName+" password reset", body)
}

func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	const op = "notify.SMTPNotifier.send"

	ctx, cancel := context.WithTimeout(ctx, smtpTimeout)
	defer cancel()

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return fmt.Errorf("%s: starttls: %w", op, err)
		}
	}
	if ok, _ := c.Extension("AUTH"); ok && n.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", n.cfg.User, n.cfg.Pass, n.cfg.Host)); err != nil {
			return fmt.Errorf("%s: auth: %w", op, err)
		}
	}

	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := w.Write(n.message(to, subject, body)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return c.Quit()
}

func (n *SMTPNotifier) message(to, subject, body string) []byte {
	from := mail.Address{Name: n.cfg.FromName, Address: n.cfg.From}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", n.now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.Write(bytes.ReplaceAll([]byte(body), []byte("\n"), []byte("\r\n")))
	return buf.Bytes()
}
