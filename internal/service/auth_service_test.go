package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/mocks"
	"github.com/Olprog59/go-prodtrack/internal/repository"
	"github.com/Olprog59/go-prodtrack/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Str0ng!Pass"

type authFixture struct {
	service *AuthService
	users   *mocks.MockUserRepository
	tokens  *mocks.MockRefreshTokenStore
	metrics *mocks.MockMetrics
	user    *domain.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	users := mocks.NewMockUserRepository()
	user := users.Add(&domain.User{Email: "op@plant.local", Nom: "Op", Password: string(hashed), Role: domain.RoleUser})
	tokens := mocks.NewMockRefreshTokenStore()
	m := mocks.NewMockMetrics()

	return &authFixture{
		service: NewAuthService(users, tokens, testConfig(), repository.NewTestDB(t), m),
		users:   users,
		tokens:  tokens,
		metrics: m,
		user:    user,
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success issues a bound token pair", func(t *testing.T) {
		f := newAuthFixture(t)
		f.user.FailedLoginAttempts = 2

		user, pair, err := f.service.Login(ctx, "op@plant.local", testPassword, "ip", "ua")
		require.NoError(t, err)
		assert.Equal(t, f.user.ID, user.ID)
		assert.Zero(t, f.user.FailedLoginAttempts)

		claims, err := auth.ValidateJWT(pair.AccessToken, testConfig().Auth.JWTSecret)
		require.NoError(t, err)
		assert.Equal(t, string(domain.RoleUser), claims.Role)

		stored := f.tokens.Tokens[pair.RefreshToken]
		require.NotNil(t, stored)
		assert.Equal(t, "ip", stored.IPHash)
		assert.Equal(t, "ua", stored.UAHash)
	})

	t.Run("new login revokes previous sessions", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Login(ctx, "op@plant.local", testPassword, "ip", "ua")
		require.NoError(t, err)
		_, _, err = f.service.Login(ctx, "op@plant.local", testPassword, "ip", "ua")
		require.NoError(t, err)
		assert.Equal(t, 1, f.tokens.ActiveFor(f.user.ID))
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Login(ctx, "ghost@plant.local", testPassword, "ip", "ua")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password counts the failure", func(t *testing.T) {
		f := newAuthFixture(t)
		_, _, err := f.service.Login(ctx, "op@plant.local", "wrong", "ip", "ua")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 1, f.users.IncrementFailedCalls)
		assert.Equal(t, 1, f.user.FailedLoginAttempts)
	})

	t.Run("last allowed failure locks the account", func(t *testing.T) {
		f := newAuthFixture(t)
		f.user.FailedLoginAttempts = 2

		_, _, err := f.service.Login(ctx, "op@plant.local", "wrong", "ip", "ua")
		assert.ErrorIs(t, err, ErrAccountLocked)
		assert.Equal(t, 1, f.users.LockAccountCalls)
		assert.Equal(t, 1, f.metrics.AccountLockoutCalls)
		require.NotNil(t, f.user.LockedUntil)

		_, _, err = f.service.Login(ctx, "op@plant.local", testPassword, "ip", "ua")
		assert.ErrorIs(t, err, ErrAccountLocked)
		assert.Contains(t, err.Error(), "try again in")
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, f *authFixture) *auth.TokenPair {
		t.Helper()
		_, pair, err := f.service.Login(ctx, "op@plant.local", testPassword, "ip", "ua")
		require.NoError(t, err)
		return pair
	}

	t.Run("rotates the refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		old := login(t, f)

		pair, err := f.service.RefreshToken(ctx, old.RefreshToken, "ip", "ua")
		require.NoError(t, err)
		assert.NotEqual(t, old.RefreshToken, pair.RefreshToken)
		assert.True(t, f.tokens.Tokens[old.RefreshToken].IsRevoked)

		_, err = f.service.RefreshToken(ctx, old.RefreshToken, "ip", "ua")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	tests := []struct {
		name   string
		token  func(pair *auth.TokenPair) string
		ip, ua string
		setup  func(f *authFixture, pair *auth.TokenPair)
	}{
		{name: "unknown token", token: func(*auth.TokenPair) string { return "nope" }, ip: "ip", ua: "ua"},
		{name: "other ip", ip: "elsewhere", ua: "ua"},
		{name: "other user agent", ip: "ip", ua: "curl"},
		{
			name: "expired", ip: "ip", ua: "ua",
			setup: func(f *authFixture, pair *auth.TokenPair) {
				f.tokens.Tokens[pair.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)
			},
		},
		{
			name: "user deleted", ip: "ip", ua: "ua",
			setup: func(f *authFixture, _ *auth.TokenPair) { delete(f.users.Users, f.user.ID) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			pair := login(t, f)
			if tt.setup != nil {
				tt.setup(f, pair)
			}
			token := pair.RefreshToken
			if tt.token != nil {
				token = tt.token(pair)
			}
			_, err := f.service.RefreshToken(ctx, token, tt.ip, tt.ua)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthService_RevokeAndPurge(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, _, err := f.service.Login(ctx, "op@plant.local", testPassword, "ip", "ua")
	require.NoError(t, err)
	require.NoError(t, f.service.RevokeAllTokens(ctx, f.user.ID))
	assert.Zero(t, f.tokens.ActiveFor(f.user.ID))

	f.tokens.Tokens["old"] = &domain.RefreshToken{Token: "old", UserID: f.user.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	n, err := f.service.PurgeExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	f.tokens.PurgeExpiredError = errors.New("disk full")
	_, err = f.service.PurgeExpiredTokens(ctx)
	assert.ErrorIs(t, err, errInternal)

	f.tokens.RevokeAllError = errors.New("disk full")
	assert.ErrorIs(t, f.service.RevokeAllTokens(ctx, f.user.ID), errInternal)
}

func TestAuthService_UserLocksAreSwept(t *testing.T) {
	f := newAuthFixture(t)
	f.service.getUserLock(1)
	f.service.getUserLock(2)

	f.service.mapMutex.Lock()
	f.service.userLocks[1].lastUsed = time.Now().Add(-2 * lockIdleTimeout)
	f.service.lastSweep = time.Now().Add(-2 * lockIdleTimeout)
	f.service.mapMutex.Unlock()

	f.service.getUserLock(3)
	_, stale := f.service.userLocks[1]
	assert.False(t, stale)
	assert.Len(t, f.service.userLocks, 2)
}
