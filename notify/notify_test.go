// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/quickly-vote/cliparse"
)

// fakeSMTP accepts a single session and records what it was sent.
type fakeSMTP struct {
	port   int
	done   chan struct{}
	authed bool
	from   string
	rcpt   string
	data   string
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	f := &fakeSMTP{port: ln.Addr().(*net.TCPAddr).Port, done: make(chan struct{})}
	go func() {
		defer close(f.done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tc := textproto.NewConn(conn)
		tc.PrintfLine("220 fake ESMTP")
		for {
			line, err := tc.ReadLine()
			if err != nil {
				return
			}
			verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])
			switch verb {
			case "EHLO":
				tc.PrintfLine("250-fake")
				tc.PrintfLine("250 AUTH PLAIN")
			case "AUTH":
				f.authed = true
				tc.PrintfLine("235 2.7.0 Authentication successful")
			case "MAIL":
				f.from = line
				tc.PrintfLine("250 OK")
			case "RCPT":
				f.rcpt = line
				tc.PrintfLine("250 OK")
			case "DATA":
				tc.PrintfLine("354 End data with <CR><LF>.<CR><LF>")
				b, err := tc.ReadDotBytes()
				if err != nil {
					return
				}
				f.data = string(b)
				tc.PrintfLine("250 OK: queued")
			case "QUIT":
				tc.PrintfLine("221 Bye")
				return
			default:
				tc.PrintfLine("250 OK")
			}
		}
	}()

	return f
}

func testSMTPConfig(port int) cliparse.SMTPConfig {
	return cliparse.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     port,
		User:     "mailer",
		Pass:     "secret",
		From:     "noreply@brecht-schule.hamburg",
		FromName: "Quickly Vote",
	}
}

func TestSMTPNotifier_SendVerificationCode(t *testing.T) {
	server := startFakeSMTP(t)
	n := NewSMTPNotifier(testSMTPConfig(server.port))

	err := n.SendVerificationCode(context.Background(), "max.muster@brecht-schule.hamburg", "123456")
	require.NoError(t, err)

	select {
	case <-server.done:
	case <-time.After(5 * time.Second):
		t.Fatal("smtp session did not finish")
	}

	assert.True(t, server.authed)
	assert.Equal(t, "MAIL FROM:<noreply@brecht-schule.hamburg>", server.from)
	assert.Equal(t, "RCPT TO:<max.muster@brecht-schule.hamburg>", server.rcpt)
	assert.Contains(t, server.data, `From: "Quickly Vote" <noreply@brecht-schule.hamburg>`)
	assert.Contains(t, server.data, "To: max.muster@brecht-schule.hamburg")
	assert.Contains(t, server.data, "Subject: Your verification code for Quickly Vote")
	assert.Contains(t, server.data, "123456")
}

func TestSMTPNotifier_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	n := NewSMTPNotifier(testSMTPConfig(port))
	err = n.SendPasswordReset(context.Background(), "a@brecht-schule.hamburg", "654321")
	assert.Error(t, err)
}

func TestSMTPNotifier_Message(t *testing.T) {
	n := NewSMTPNotifier(testSMTPConfig(25))
	n.now = func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) }

	msg := string(n.message("a@brecht-schule.hamburg", "Passwort zurücksetzen", "line one\nline two\n"))

	assert.Contains(t, msg, "Date: Thu, 01 May 2025 09:30:00 +0000\r\n")
	assert.Contains(t, msg, "Subject: =?utf-8?q?Passwort_zur=C3=BCcksetzen?=\r\n")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline one\r\nline two\r\n"))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, n.SendVerificationCode(context.Background(), "a@brecht-schule.hamburg", "111111"))
	require.NoError(t, n.SendPasswordReset(context.Background(), "a@brecht-schule.hamburg", "222222"))

	out := buf.String()
	assert.Contains(t, out, `"code":"111111"`)
	assert.Contains(t, out, `"code":"222222"`)
	assert.Contains(t, out, `"email":"a@brecht-schule.hamburg"`)
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*SMTPNotifier)(nil)
)
