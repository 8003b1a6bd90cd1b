// Package validator holds the stateless acceptance rules for usernames
// and passwords. Everything here is pure: no persistence, no clock.
package validator

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

const (
	usernameMinLen = 2
	usernameMaxLen = 50
	passwordMinLen = 8
	passwordMaxLen = 128
)

// Letters, digits, underscore, and the common CJK ideograph blocks.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_\x{4e00}-\x{9fff}\x{3400}-\x{4dbf}]+$`)

// Passwords that match one of these (case-insensitively) are rejected
// regardless of their composition.
var weakPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"passw0rd":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"abc123456":  {},
	"11111111":   {},
	"iloveyou1":  {},
	"admin123":   {},
}

var (
	ErrUsernameEmpty   = errors.New("username is required")
	ErrUsernameLength  = errors.New("username must be 2 to 50 characters")
	ErrUsernameCharset = errors.New("username may only contain letters, digits, underscore or CJK characters")

	ErrPasswordEmpty    = errors.New("password is required")
	ErrPasswordLength   = errors.New("password must be 8 to 128 characters")
	ErrPasswordNoDigit  = errors.New("password must contain at least one digit")
	ErrPasswordNoLetter = errors.New("password must contain at least one letter")
	ErrPasswordWeak     = errors.New("password is too common")
)

// Username trims raw and checks length and charset. On success it
// returns the trimmed value to use everywhere downstream.
func Username(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrUsernameEmpty
	}
	if n := len([]rune(trimmed)); n < usernameMinLen || n > usernameMaxLen {
		return "", ErrUsernameLength
	}
	if !usernamePattern.MatchString(trimmed) {
		return "", ErrUsernameCharset
	}

	return trimmed, nil
}

// Password enforces the strength policy: length bounds, at least one
// digit, at least one letter, and no exact match against the weak list.
func Password(raw string) error {
	if raw == "" {
		return ErrPasswordEmpty
	}
	if n := len(raw); n < passwordMinLen || n > passwordMaxLen {
		return ErrPasswordLength
	}

	var hasDigit, hasLetter bool
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	if !hasLetter {
		return ErrPasswordNoLetter
	}

	if _, weak := weakPasswords[strings.ToLower(raw)]; weak {
		return ErrPasswordWeak
	}

	return nil
}
