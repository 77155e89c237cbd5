package sqlstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.RefreshTokenStore = (*refreshTokenStore)(nil)

// refreshTokenStore implements RefreshTokenStore. Only SHA-256 hashes of the
// tokens are persisted.
type refreshTokenStore struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewRefreshTokenStore creates token store / Crée le magasin de tokens
func NewRefreshTokenStore(database ports.DBTX, dialect db.ErrorTranslator) ports.RefreshTokenStore {
	return &refreshTokenStore{db: database, handleError: translator(dialect)}
}

// WithTx returns store with transaction / Retourne le magasin avec transaction
func (s *refreshTokenStore) WithTx(dbtx ports.DBTX) ports.RefreshTokenStore {
	return &refreshTokenStore{db: dbtx, handleError: s.handleError}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Save stores hashed refresh token / Stocke le token haché
func (s *refreshTokenStore) Save(ctx context.Context, t *domain.RefreshToken) error {
	if t == nil {
		return errors.New("the refresh token is null")
	}

	const query = `
	INSERT INTO refresh_tokens(token, user_id, issue_at, expires_at, is_revoked, ip_hash, ua_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		hashToken(t.Token),
		t.UserID,
		t.IssueAt.UTC(),
		t.ExpiresAt.UTC(),
		t.IsRevoked,
		t.IPHash,
		t.UAHash,
	)
	return s.handleError(err)
}

// Get retrieves refresh token by its clear value / Récupère le token par sa valeur en clair
func (s *refreshTokenStore) Get(ctx context.Context, tokenString string) (*domain.RefreshToken, error) {
	const query = `
	SELECT token, user_id, issue_at, expires_at, is_revoked, ip_hash, ua_hash
	FROM refresh_tokens
	WHERE token = ?
	`
	var t domain.RefreshToken
	err := s.db.QueryRowContext(ctx, query, hashToken(tokenString)).Scan(
		&t.Token,
		&t.UserID,
		&t.IssueAt,
		&t.ExpiresAt,
		&t.IsRevoked,
		&t.IPHash,
		&t.UAHash,
	)
	if err != nil {
		return nil, s.handleError(err)
	}
	return &t, nil
}

// Revoke marks token as revoked / Marque le token comme révoqué
func (s *refreshTokenStore) Revoke(ctx context.Context, tokenString string) error {
	const query = `UPDATE refresh_tokens SET is_revoked = ? WHERE token = ?`
	_, err := s.db.ExecContext(ctx, query, true, hashToken(tokenString))
	return s.handleError(err)
}

// RevokeAllForUser revokes all user tokens / Révoque tous les tokens de l'utilisateur
func (s *refreshTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	const query = `UPDATE refresh_tokens SET is_revoked = ? WHERE user_id = ? AND is_revoked = ?`
	_, err := s.db.ExecContext(ctx, query, true, userID, false)
	return s.handleError(err)
}

// PurgeExpired deletes expired tokens / Supprime les tokens expirés
func (s *refreshTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at < ?`
	res, err := s.db.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, s.handleError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.handleError(err)
	}
	slog.Info("purged expired refresh tokens", "count", n)
	return n, nil
}
