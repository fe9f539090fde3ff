// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notify delivers verification and password reset codes.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends one-time codes to an email address.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendPasswordReset(ctx context.Context, email, code string) error
}

// LogNotifier writes codes to the log instead of sending mail.
// Used when SMTP is not configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	n.log.InfoContext(ctx, "verification code (smtp disabled)", slog.String("email", email), slog.String("code", code))
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, code string) error {
	n.log.InfoContext(ctx, "password reset code (smtp disabled)", slog.String("email", email), slog.String("code", code))
	return nil
}
