package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	PasswordHash  string     `json:"-"`
	LoginAttempts int        `json:"-"`
	LockedUntil   *time.Time `json:"-"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP   string     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// AuthClaims is the JWT payload shared by access and refresh tokens.
// TokenType discriminates the two; a refresh token must never be
// accepted where an access token is required, and vice versa.
type AuthClaims struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// RevokedToken is a blacklist row. TokenHash is a sha256 hex digest of
// the raw token string, never the token itself.
type RevokedToken struct {
	TokenHash string    `json:"token_hash"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginLog is an append-only audit record of a login or registration
// attempt. UserID is nil when the attempted username matched no user.
type LoginLog struct {
	ID            int64     `json:"id"`
	UserID        *int64    `json:"user_id"`
	Username      string    `json:"username"`
	ClientIP      string    `json:"client_ip"`
	UserAgent     string    `json:"user_agent"`
	Success       bool      `json:"success"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
