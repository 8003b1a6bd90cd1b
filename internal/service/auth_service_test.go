package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-finance-tracker/internal/model"
	"go-finance-tracker/pkg/apierror"
)

const (
	testPassword = "hunter2abc"
	testIP       = "203.0.113.9"
)

var testMeta = ClientMeta{IP: testIP, UserAgent: "go-test"}

func newTestService(users *MockUserStore, blacklist *MockBlacklistStore, logs *MockLoginLogStore) *AuthService {
	return NewAuthService(users, blacklist, logs, newTestIssuer(), 12, 5, 15*time.Minute)
}

// hashFor uses the minimum bcrypt cost; verification does not care.
func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	return apiErr.HTTPStatus
}

func TestAuthService_Register(t *testing.T) {
	t.Run("success issues both tokens and audits", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("Create", mock.Anything, "alice", mock.AnythingOfType("string")).Return(int64(7), nil)
		logs.On("Append", mock.Anything, mock.MatchedBy(func(e model.LoginLog) bool {
			return e.Success && e.Username == "alice" && e.UserID != nil && *e.UserID == 7 && e.ClientIP == testIP
		})).Return(nil)

		pair, err := svc.Register(context.Background(), "  alice  ", testPassword, testMeta)
		require.NoError(t, err)

		assert.Equal(t, int64(7), pair.UserID)
		assert.Equal(t, "alice", pair.Username)

		claims, err := svc.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)

		users.AssertExpectations(t)
		logs.AssertExpectations(t)
	})

	t.Run("duplicate username is a 400", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("Create", mock.Anything, "alice", mock.AnythingOfType("string")).
			Return(int64(0), fmt.Errorf("create user: %w", model.ErrUniqueViolation))
		logs.On("Append", mock.Anything, mock.MatchedBy(func(e model.LoginLog) bool {
			return !e.Success && e.FailureReason != nil
		})).Return(nil)

		_, err := svc.Register(context.Background(), "alice", testPassword, testMeta)
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})

	t.Run("invalid credentials never reach the store", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newTestService(users, new(MockBlacklistStore), new(MockLoginLogStore))

		_, err := svc.Register(context.Background(), "a", testPassword, testMeta)
		assert.Equal(t, 400, apiStatus(t, err))

		_, err = svc.Register(context.Background(), "alice", "short", testMeta)
		assert.Equal(t, 400, apiStatus(t, err))

		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	t.Run("unknown username is a 401 and audited", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("FindByUsername", mock.Anything, "ghost").Return(model.User{}, model.ErrUserNotFound)
		logs.On("Append", mock.Anything, mock.MatchedBy(func(e model.LoginLog) bool {
			return !e.Success && e.UserID == nil && *e.FailureReason == "unknown username"
		})).Return(nil)

		_, err := svc.Login(context.Background(), "ghost", testPassword, testMeta)
		assert.Equal(t, 401, apiStatus(t, err))
		logs.AssertExpectations(t)
	})

	t.Run("wrong password increments the counter", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword),
		}, nil)
		users.On("IncrementFailedAttempts", mock.Anything, int64(7)).Return(1, nil)
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Login(context.Background(), "alice", "wrong1password", testMeta)
		assert.Equal(t, 401, apiStatus(t, err))

		users.AssertNotCalled(t, "LockAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fifth failure locks the account for the window", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword),
		}, nil)
		users.On("IncrementFailedAttempts", mock.Anything, int64(7)).Return(5, nil)
		users.On("LockAccount", mock.Anything, int64(7), mock.MatchedBy(func(until time.Time) bool {
			return time.Until(until) > 14*time.Minute && time.Until(until) <= 15*time.Minute
		})).Return(nil)
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Login(context.Background(), "alice", "wrong1password", testMeta)
		assert.Equal(t, 401, apiStatus(t, err))
		users.AssertExpectations(t)
	})

	t.Run("locked account rejects even the correct password", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		lockedUntil := time.Now().Add(10 * time.Minute)
		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword),
			LoginAttempts: 5, LockedUntil: &lockedUntil,
		}, nil)
		logs.On("Append", mock.Anything, mock.MatchedBy(func(e model.LoginLog) bool {
			return !e.Success && *e.FailureReason == "account locked"
		})).Return(nil)

		_, err := svc.Login(context.Background(), "alice", testPassword, testMeta)
		assert.Equal(t, 423, apiStatus(t, err))
		assert.Contains(t, err.Error(), "10 minutes")

		// The short-circuit means no counter churn while locked.
		users.AssertNotCalled(t, "IncrementFailedAttempts", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "RecordLoginSuccess", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("remaining minutes round up", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		lockedUntil := time.Now().Add(30 * time.Second)
		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword),
			LockedUntil: &lockedUntil,
		}, nil)
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		_, err := svc.Login(context.Background(), "alice", testPassword, testMeta)
		assert.Equal(t, 423, apiStatus(t, err))
		assert.Contains(t, err.Error(), "1 minutes")
	})

	t.Run("expired lock clears lazily and login succeeds", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		lockedUntil := time.Now().Add(-time.Minute)
		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword),
			LoginAttempts: 5, LockedUntil: &lockedUntil,
		}, nil)
		users.On("ClearLockout", mock.Anything, int64(7)).Return(nil)
		users.On("RecordLoginSuccess", mock.Anything, int64(7), testIP).Return(nil)
		logs.On("Append", mock.Anything, mock.MatchedBy(func(e model.LoginLog) bool {
			return e.Success
		})).Return(nil)

		pair, err := svc.Login(context.Background(), "alice", testPassword, testMeta)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		users.AssertExpectations(t)
	})

	t.Run("success resets state and stamps last login", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword), LoginAttempts: 3,
		}, nil)
		users.On("RecordLoginSuccess", mock.Anything, int64(7), testIP).Return(nil)
		logs.On("Append", mock.Anything, mock.Anything).Return(nil)

		pair, err := svc.Login(context.Background(), "alice", testPassword, testMeta)
		require.NoError(t, err)

		claims, err := svc.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		users.AssertExpectations(t)
	})

	t.Run("audit write failure does not fail the login", func(t *testing.T) {
		users := new(MockUserStore)
		logs := new(MockLoginLogStore)
		svc := newTestService(users, new(MockBlacklistStore), logs)

		users.On("FindByUsername", mock.Anything, "alice").Return(model.User{
			ID: 7, Username: "alice", PasswordHash: hashFor(t, testPassword),
		}, nil)
		users.On("RecordLoginSuccess", mock.Anything, int64(7), testIP).Return(nil)
		logs.On("Append", mock.Anything, mock.Anything).Return(fmt.Errorf("disk full"))

		_, err := svc.Login(context.Background(), "alice", testPassword, testMeta)
		assert.NoError(t, err)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("mints a fresh access token only", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newTestService(users, new(MockBlacklistStore), new(MockLoginLogStore))

		issuer := newTestIssuer()
		refresh, err := issuer.IssueRefresh(7, "alice")
		require.NoError(t, err)

		users.On("FindByID", mock.Anything, int64(7)).Return(model.User{ID: 7, Username: "alice"}, nil)

		pair, err := svc.Refresh(context.Background(), refresh)
		require.NoError(t, err)

		assert.Empty(t, pair.RefreshToken)
		claims, err := svc.VerifyAccess(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, model.TokenTypeAccess, claims.TokenType)
	})

	t.Run("access token rejected as refresh", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newTestService(users, new(MockBlacklistStore), new(MockLoginLogStore))

		access, err := newTestIssuer().IssueAccess(7, "alice")
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), access)
		assert.Equal(t, 401, apiStatus(t, err))
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		users := new(MockUserStore)
		svc := newTestService(users, new(MockBlacklistStore), new(MockLoginLogStore))

		refresh, err := newTestIssuer().IssueRefresh(7, "alice")
		require.NoError(t, err)

		users.On("FindByID", mock.Anything, int64(7)).Return(model.User{}, model.ErrUserNotFound)

		_, err = svc.Refresh(context.Background(), refresh)
		assert.Equal(t, 401, apiStatus(t, err))
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("blacklists the token hash until its expiry", func(t *testing.T) {
		blacklist := new(MockBlacklistStore)
		svc := newTestService(new(MockUserStore), blacklist, new(MockLoginLogStore))

		token, err := newTestIssuer().IssueAccess(7, "alice")
		require.NoError(t, err)

		blacklist.On("Upsert", mock.Anything,
			mock.MatchedBy(func(row model.RevokedToken) bool {
				return row.TokenHash == HashToken(token) &&
					row.UserID == 7 &&
					time.Until(row.ExpiresAt) > 59*time.Minute
			})).Return(nil)

		svc.Logout(context.Background(), token, 7)
		blacklist.AssertExpectations(t)
	})

	t.Run("token without expiry is a no-op", func(t *testing.T) {
		blacklist := new(MockBlacklistStore)
		svc := newTestService(new(MockUserStore), blacklist, new(MockLoginLogStore))

		svc.Logout(context.Background(), "not-a-jwt", 7)
		blacklist.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("revocation write failure is swallowed", func(t *testing.T) {
		blacklist := new(MockBlacklistStore)
		svc := newTestService(new(MockUserStore), blacklist, new(MockLoginLogStore))

		token, err := newTestIssuer().IssueAccess(7, "alice")
		require.NoError(t, err)

		blacklist.On("Upsert", mock.Anything, mock.Anything).
			Return(fmt.Errorf("connection refused"))

		// Must not panic or surface the error.
		svc.Logout(context.Background(), token, 7)
	})
}

func TestAuthService_IsRevoked(t *testing.T) {
	blacklist := new(MockBlacklistStore)
	svc := newTestService(new(MockUserStore), blacklist, new(MockLoginLogStore))

	blacklist.On("Exists", mock.Anything, HashToken("tok")).Return(true, nil)

	revoked, err := svc.IsRevoked(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_StartBlacklistSweeper(t *testing.T) {
	blacklist := new(MockBlacklistStore)
	svc := newTestService(new(MockUserStore), blacklist, new(MockLoginLogStore))

	swept := make(chan struct{}, 8)
	blacklist.On("DeleteExpired", mock.Anything).Run(func(mock.Arguments) {
		select {
		case swept <- struct{}{}:
		default:
		}
	}).Return(int64(2), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartBlacklistSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
