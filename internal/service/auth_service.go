package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

const lockIdleTimeout = 15 * time.Minute

// AuthService handles authentication operations / Gère les opérations d'authentification
type AuthService struct {
	userReader   ports.UserReader
	security     ports.AccountSecurityRepository
	refreshStore ports.RefreshTokenStore
	conf         *config.Config
	db           ports.TxBeginner
	metrics      AuthMetricsRecorder

	mapMutex  sync.Mutex
	userLocks map[int64]*lockEntry
	lastSweep time.Time
}

// AuthMetricsRecorder records auth metrics / Enregistre les métriques d'authentification
type AuthMetricsRecorder interface {
	RecordAccountLockout()
}

// NewAuthService creates authentication service instance / Crée une instance de service d'authentification
func NewAuthService(
	repo ports.UserRepository,
	refreshStore ports.RefreshTokenStore,
	conf *config.Config,
	db ports.TxBeginner,
	metrics AuthMetricsRecorder,
) *AuthService {
	return &AuthService{
		userReader:   repo,
		security:     repo,
		refreshStore: refreshStore,
		conf:         conf,
		db:           db,
		metrics:      metrics,
		userLocks:    make(map[int64]*lockEntry),
		lastSweep:    time.Now(),
	}
}

// getUserLock retrieves or creates user-specific mutex / Récupère ou crée un mutex utilisateur
// Idle locks are swept lazily so no goroutine outlives the service.
func (s *AuthService) getUserLock(userID int64) *sync.Mutex {
	s.mapMutex.Lock()
	defer s.mapMutex.Unlock()

	now := time.Now()
	if now.Sub(s.lastSweep) > lockIdleTimeout {
		for id, entry := range s.userLocks {
			if now.Sub(entry.lastUsed) > lockIdleTimeout {
				delete(s.userLocks, id)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.userLocks[userID]
	if !ok {
		entry = &lockEntry{mu: &sync.Mutex{}}
		s.userLocks[userID] = entry
	}
	entry.lastUsed = now
	return entry.mu
}

// Login authenticates user and generates tokens / Authentifie l'utilisateur et génère les tokens
func (s *AuthService) Login(ctx context.Context, email, password, ipHash, uaHash string) (*domain.User, *auth.TokenPair, error) {
	user, err := s.userReader.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if user.IsLocked() {
		s.metrics.RecordAccountLockout()
		return nil, nil, fmt.Errorf("%w, try again in %s", ErrAccountLocked, formatLockoutDuration(time.Until(*user.LockedUntil)))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if user.FailedLoginAttempts+1 >= s.conf.Security.MaxFailedAttempts {
			if err := s.security.LockAccount(ctx, user.ID, time.Now().Add(s.conf.Security.LockoutDuration)); err != nil {
				slog.Error("failed to lock account", "user_id", user.ID, "err", err)
			}
			s.metrics.RecordAccountLockout()
			return nil, nil, fmt.Errorf("%w, try again in %s", ErrAccountLocked, formatLockoutDuration(s.conf.Security.LockoutDuration))
		}

		if err := s.security.IncrementFailedAttempts(ctx, user.ID); err != nil {
			slog.Error("failed to record failed login attempt", "user_id", user.ID, "err", err)
		}
		return nil, nil, ErrInvalidCredentials
	}

	userLock := s.getUserLock(user.ID)
	userLock.Lock()
	defer userLock.Unlock()

	var pair *auth.TokenPair
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		txRefreshStore := s.refreshStore.WithTx(tx)

		// A new session invalidates every previous one.
		if err := txRefreshStore.RevokeAllForUser(ctx, user.ID); err != nil {
			slog.Error("failed to revoke user tokens during login", "user_id", user.ID, "err", err)
			return errInternal
		}

		var err error
		pair, err = s.issueTokens(ctx, txRefreshStore, user, ipHash, uaHash)
		if err != nil {
			return err
		}

		if err := s.security.WithTx(tx).ResetFailedAttempts(ctx, user.ID); err != nil {
			slog.Error("failed to reset failed login attempts", "user_id", user.ID, "err", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// issueTokens generates a token pair and stores its refresh token bound to the client.
func (s *AuthService) issueTokens(ctx context.Context, store ports.RefreshTokenStore, user *domain.User, ipHash, uaHash string) (*auth.TokenPair, error) {
	pair, err := auth.GenerateTokenPair(
		user.ID,
		string(user.Role),
		s.conf.Auth.JWTSecret,
		s.conf.Auth.AccessTokenDuration,
		s.conf.Auth.RefreshTokenDuration,
	)
	if err != nil {
		slog.Error("failed to generate token pair", "err", err)
		return nil, errInternal
	}

	now := time.Now()
	record := &domain.RefreshToken{
		Token:     pair.RefreshToken,
		UserID:    user.ID,
		IssueAt:   now,
		ExpiresAt: now.Add(s.conf.Auth.RefreshTokenDuration),
		IPHash:    ipHash,
		UAHash:    uaHash,
	}
	if err := store.Save(ctx, record); err != nil {
		slog.Error("failed to save refresh token", "user_id", user.ID, "err", err)
		return nil, errInternal
	}
	return pair, nil
}

// RefreshToken validates and rotates refresh token / Valide et renouvelle le refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken, ipHash, uaHash string) (*auth.TokenPair, error) {
	record, err := s.refreshStore.Get(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !record.IsTokenValid() {
		return nil, ErrInvalidToken
	}

	if record.IPHash != ipHash || record.UAHash != uaHash {
		slog.Warn("refresh token binding validation failed", "user_id", record.UserID)
		return nil, ErrInvalidToken
	}

	user, err := s.userReader.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userLock := s.getUserLock(user.ID)
	userLock.Lock()
	defer userLock.Unlock()

	var pair *auth.TokenPair
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		txRefreshStore := s.refreshStore.WithTx(tx)

		if err := txRefreshStore.Revoke(ctx, refreshToken); err != nil {
			slog.Error("failed to revoke old refresh token", "user_id", user.ID, "err", err)
			return errInternal
		}

		var err error
		pair, err = s.issueTokens(ctx, txRefreshStore, user, ipHash, uaHash)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// RevokeAllTokens revokes all refresh tokens for a user / Révoque tous les refresh tokens d'un utilisateur
func (s *AuthService) RevokeAllTokens(ctx context.Context, userID int64) error {
	lock := s.getUserLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens", "err", err, "user_id", userID)
		return errInternal
	}

	slog.Info("all refresh tokens revoked", "user_id", userID)
	return nil
}

// PurgeExpiredTokens deletes refresh tokens expired before now.
// Supprime les refresh tokens expirés.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.refreshStore.PurgeExpired(ctx, time.Now())
	if err != nil {
		slog.Error("failed to purge expired refresh tokens", "err", err)
		return 0, errInternal
	}
	return n, nil
}
