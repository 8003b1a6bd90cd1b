package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-finance-tracker/internal/model"
)

// TokenIssuer mints and verifies the two bearer-token kinds. Access and
// refresh tokens are signed with distinct secrets so one class can
// never be replayed as the other even if the type claim were ignored.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (t *TokenIssuer) IssueAccess(userID int64, username string) (string, error) {
	return t.sign(userID, username, model.TokenTypeAccess, t.accessTTL, t.accessSecret)
}

func (t *TokenIssuer) IssueRefresh(userID int64, username string) (string, error) {
	return t.sign(userID, username, model.TokenTypeRefresh, t.refreshTTL, t.refreshSecret)
}

func (t *TokenIssuer) sign(userID int64, username string, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now().UTC()
	claims := model.AuthClaims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// VerifyAccess checks signature, expiry and the type claim against the
// access secret.
func (t *TokenIssuer) VerifyAccess(tokenString string) (*model.AuthClaims, error) {
	return t.verify(tokenString, model.TokenTypeAccess, t.accessSecret)
}

// VerifyRefresh checks signature, expiry and the type claim against
// the refresh secret.
func (t *TokenIssuer) VerifyRefresh(tokenString string) (*model.AuthClaims, error) {
	return t.verify(tokenString, model.TokenTypeRefresh, t.refreshSecret)
}

func (t *TokenIssuer) verify(tokenString string, expectedType string, secret []byte) (*model.AuthClaims, error) {
	claims := &model.AuthClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	if claims.TokenType != expectedType {
		return nil, model.ErrTokenInvalid
	}
	if claims.UserID <= 0 {
		return nil, model.ErrTokenInvalid
	}

	return claims, nil
}

// DecodeExpiry extracts the expiry claim without verifying the
// signature. The caller has already authenticated the token; this is
// only used to copy its natural expiry onto a blacklist row.
func (t *TokenIssuer) DecodeExpiry(tokenString string) (time.Time, bool) {
	claims := &model.AuthClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// HashToken is the one-way digest used as the blacklist key so a
// compromised blacklist table never leaks usable tokens.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
