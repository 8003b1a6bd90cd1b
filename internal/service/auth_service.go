package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-finance-tracker/internal/model"
	"go-finance-tracker/internal/validator"
	"go-finance-tracker/pkg/apierror"
)

type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, username string, passwordHash string) (int64, error)
	IncrementFailedAttempts(ctx context.Context, userID int64) (int, error)
	LockAccount(ctx context.Context, userID int64, until time.Time) error
	ClearLockout(ctx context.Context, userID int64) error
	RecordLoginSuccess(ctx context.Context, userID int64, ip string) error
}

type BlacklistStore interface {
	Upsert(ctx context.Context, row model.RevokedToken) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type LoginLogStore interface {
	Append(ctx context.Context, entry model.LoginLog) error
}

// ClientMeta carries the request attributes the audit trail records.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// TokenPair is what a successful register or login hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Username     string
}

type AuthService struct {
	users            UserStore
	blacklist        BlacklistStore
	logs             LoginLogStore
	tokens           *TokenIssuer
	bcryptCost       int
	lockoutThreshold int
	lockoutDuration  time.Duration
}

func NewAuthService(
	users UserStore,
	blacklist BlacklistStore,
	logs LoginLogStore,
	tokens *TokenIssuer,
	bcryptCost int,
	lockoutThreshold int,
	lockoutDuration time.Duration,
) *AuthService {
	if bcryptCost < 12 {
		bcryptCost = 12
	}
	return &AuthService{
		users:            users,
		blacklist:        blacklist,
		logs:             logs,
		tokens:           tokens,
		bcryptCost:       bcryptCost,
		lockoutThreshold: lockoutThreshold,
		lockoutDuration:  lockoutDuration,
	}
}

func (s *AuthService) Register(ctx context.Context, username string, password string, meta ClientMeta) (TokenPair, error) {
	normalized, err := validator.Username(username)
	if err != nil {
		return TokenPair{}, apierror.BadRequest(err.Error())
	}
	if err := validator.Password(password); err != nil {
		return TokenPair{}, apierror.BadRequest(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.Create(ctx, normalized, string(hash))
	if errors.Is(err, model.ErrUniqueViolation) {
		s.audit(ctx, nil, normalized, meta, false, "username already exists")
		return TokenPair{}, model.ErrUserAlreadyExists
	}
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.issuePair(userID, normalized)
	if err != nil {
		return TokenPair{}, err
	}

	s.audit(ctx, &userID, normalized, meta, true, "")
	return pair, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string, meta ClientMeta) (TokenPair, error) {
	normalized, err := validator.Username(username)
	if err != nil {
		return TokenPair{}, apierror.BadRequest(err.Error())
	}
	if password == "" {
		return TokenPair{}, apierror.BadRequest("username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, normalized)
	if errors.Is(err, model.ErrUserNotFound) {
		s.audit(ctx, nil, normalized, meta, false, "unknown username")
		return TokenPair{}, apierror.Unauthorized("invalid username or password")
	}
	if err != nil {
		return TokenPair{}, err
	}

	// The lock gates everything, including password verification, so a
	// locked account costs no bcrypt work and leaks nothing about
	// password correctness.
	locked, minutesLeft, err := s.checkLocked(ctx, &user)
	if err != nil {
		return TokenPair{}, err
	}
	if locked {
		s.audit(ctx, &user.ID, normalized, meta, false, "account locked")
		return TokenPair{}, apierror.Locked(
			fmt.Sprintf("account locked, try again in %d minutes", minutesLeft))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, user.ID)
		s.audit(ctx, &user.ID, normalized, meta, false, "wrong password")
		return TokenPair{}, apierror.Unauthorized("invalid username or password")
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID, meta.IP); err != nil {
		return TokenPair{}, err
	}

	pair, err := s.issuePair(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}

	s.audit(ctx, &user.ID, normalized, meta, true, "")
	return pair, nil
}

// checkLocked reads the lock state. An expired lock is cleared in
// place (lazy expiry); there is no sweep process for account locks.
func (s *AuthService) checkLocked(ctx context.Context, user *model.User) (bool, int, error) {
	if user.LockedUntil == nil {
		return false, 0, nil
	}

	remaining := time.Until(*user.LockedUntil)
	if remaining > 0 {
		return true, int(math.Ceil(remaining.Minutes())), nil
	}

	if err := s.users.ClearLockout(ctx, user.ID); err != nil {
		return false, 0, err
	}
	user.LoginAttempts = 0
	user.LockedUntil = nil
	return false, 0, nil
}

// recordFailure bumps the counter and sets the lock once the threshold
// is reached. Failures here must not mask the caller's 401, so errors
// are logged and dropped.
func (s *AuthService) recordFailure(ctx context.Context, userID int64) {
	attempts, err := s.users.IncrementFailedAttempts(ctx, userID)
	if err != nil {
		slog.Error("failed to increment login attempts", "user_id", userID, "error", err)
		return
	}

	if attempts >= s.lockoutThreshold {
		until := time.Now().UTC().Add(s.lockoutDuration)
		if err := s.users.LockAccount(ctx, userID, until); err != nil {
			slog.Error("failed to lock account", "user_id", userID, "error", err)
		}
	}
}

// Refresh verifies a refresh token and mints a new access token. The
// refresh token itself is not rotated; it stays valid until expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return TokenPair{}, apierror.Unauthorized("invalid or expired refresh token")
	}

	// A deleted user's refresh token must not mint new access tokens.
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return TokenPair{}, apierror.Unauthorized("user no longer exists")
	}
	if err != nil {
		return TokenPair{}, err
	}

	access, err := s.tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, UserID: user.ID, Username: user.Username}, nil
}

// Logout blacklists the presented access token until its natural
// expiry. It never fails the caller: a revocation write that goes
// wrong is logged and swallowed, and a token without an expiry claim
// is a no-op because it can do no harm the blacklist would prevent.
func (s *AuthService) Logout(ctx context.Context, rawToken string, userID int64) {
	expiresAt, ok := s.tokens.DecodeExpiry(rawToken)
	if !ok {
		return
	}

	row := model.RevokedToken{
		TokenHash: HashToken(rawToken),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	if err := s.blacklist.Upsert(ctx, row); err != nil {
		slog.Error("failed to blacklist token", "user_id", userID, "error", err)
	}
}

// IsRevoked reports whether the raw token was blacklisted. Used by the
// authentication gate before signature verification.
func (s *AuthService) IsRevoked(ctx context.Context, rawToken string) (bool, error) {
	return s.blacklist.Exists(ctx, HashToken(rawToken))
}

func (s *AuthService) VerifyAccess(tokenString string) (*model.AuthClaims, error) {
	return s.tokens.VerifyAccess(tokenString)
}

func (s *AuthService) GetUserByID(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, apierror.Unauthorized("user no longer exists")
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// StartBlacklistSweeper deletes expired blacklist rows on a regular
// interval until ctx is cancelled.
func (s *AuthService) StartBlacklistSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.blacklist.DeleteExpired(ctx)
			if err != nil {
				slog.Error("blacklist sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("blacklist sweep", "removed", removed)
			}
		}
	}
}

func (s *AuthService) issuePair(userID int64, username string) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(userID, username)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(userID, username)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       userID,
		Username:     username,
	}, nil
}

// audit appends to the login log. The trail is best effort: a failed
// write is logged and never aborts the caller's operation.
func (s *AuthService) audit(ctx context.Context, userID *int64, username string, meta ClientMeta, success bool, reason string) {
	entry := model.LoginLog{
		UserID:    userID,
		Username:  username,
		ClientIP:  meta.IP,
		UserAgent: meta.UserAgent,
		Success:   success,
	}
	if reason != "" {
		entry.FailureReason = &reason
	}

	if err := s.logs.Append(ctx, entry); err != nil {
		slog.Warn("failed to append login log", "username", username, "error", err)
	}
}
