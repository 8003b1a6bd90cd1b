package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go-finance-tracker/internal/model"
)

type sessionVerifier interface {
	IsRevoked(ctx context.Context, rawToken string) (bool, error)
	VerifyAccess(tokenString string) (*model.AuthClaims, error)
}

type contextKey string

const (
	authClaimsContextKey contextKey = "auth_claims"
	rawTokenContextKey   contextKey = "raw_token"
)

type AuthMiddleware struct {
	verifier sessionVerifier
}

func NewAuthMiddleware(verifier sessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth is the gate in front of every protected operation:
// extract the bearer token, reject it if blacklisted, then verify
// signature and expiry. All verification failures get the same
// session-expired answer so a forged token is indistinguishable from a
// stale one.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeUnauthorized(w, "not logged in or invalid token")
			return
		}

		token := strings.TrimSpace(header[7:])
		if token == "" {
			writeUnauthorized(w, "not logged in or invalid token")
			return
		}

		revoked, err := m.verifier.IsRevoked(r.Context(), token)
		if err != nil || revoked {
			writeUnauthorized(w, "session expired, please log in again")
			return
		}

		claims, err := m.verifier.VerifyAccess(token)
		if err != nil {
			writeUnauthorized(w, "session expired, please log in again")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		ctx = context.WithValue(ctx, rawTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}

// RawTokenFromContext returns the bearer token the gate accepted.
// Logout re-hashes it for the blacklist.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(rawTokenContextKey).(string)
	return token, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}
