// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var (
	ErrInvalidAdminCode   = errors.New("invalid admin code")
	ErrAdminNotConfigured = errors.New("admin code not configured")
)

const verificationCodeDigits = 6

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GenerateVerificationCode returns a random six digit code without a leading zero.
func GenerateVerificationCode() (string, error) {
	// 100000..999999
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%0*d", verificationCodeDigits, n.Int64()+100000), nil
}

// ValidateAdminCode compares the supplied admin code against the configured
// one in constant time.
func ValidateAdminCode(given, expected string) error {
	if expected == "" {
		return ErrAdminNotConfigured
	}
	if given == "" || !hmac.Equal([]byte(given), []byte(expected)) {
		return ErrInvalidAdminCode
	}
	return nil
}

// EmailValidator accepts school addresses of the form vorname.nachname@domain
// or nachname@domain.
type EmailValidator struct {
	re *regexp.Regexp
}

func NewEmailValidator(domain string) *EmailValidator {
	name := `\p{L}+(?:-\p{L}+)*`
	pattern := `(?i)^` + name + `(?:\.` + name + `)?@` + regexp.QuoteMeta(strings.ToLower(domain)) + `$`
	return &EmailValidator{re: regexp.MustCompile(pattern)}
}

func (v *EmailValidator) Valid(email string) bool {
	return v.re.MatchString(strings.TrimSpace(email))
}
