package mocks

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.RefreshTokenStore = (*MockRefreshTokenStore)(nil)

// MockRefreshTokenStore keeps tokens in clear in a map for testing.
type MockRefreshTokenStore struct {
	Tokens map[string]*domain.RefreshToken

	// Mock behavior flags
	SaveError         error
	GetError          error
	RevokeError       error
	RevokeAllError    error
	PurgeExpiredError error

	// Call tracking
	SaveCalls      int
	RevokeCalls    int
	RevokeAllCalls int
	PurgeCalls     int
}

func NewMockRefreshTokenStore() *MockRefreshTokenStore {
	return &MockRefreshTokenStore{Tokens: make(map[string]*domain.RefreshToken)}
}

func (m *MockRefreshTokenStore) Save(ctx context.Context, token *domain.RefreshToken) error {
	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	stored := *token
	m.Tokens[token.Token] = &stored
	return nil
}

func (m *MockRefreshTokenStore) Get(ctx context.Context, tokenString string) (*domain.RefreshToken, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	token, ok := m.Tokens[tokenString]
	if !ok {
		return nil, db.ErrNoRecord
	}
	return token, nil
}

func (m *MockRefreshTokenStore) Revoke(ctx context.Context, tokenString string) error {
	m.RevokeCalls++
	if m.RevokeError != nil {
		return m.RevokeError
	}
	if token, ok := m.Tokens[tokenString]; ok {
		token.IsRevoked = true
	}
	return nil
}

func (m *MockRefreshTokenStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	m.RevokeAllCalls++
	if m.RevokeAllError != nil {
		return m.RevokeAllError
	}
	for _, token := range m.Tokens {
		if token.UserID == userID {
			token.IsRevoked = true
		}
	}
	return nil
}

func (m *MockRefreshTokenStore) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	m.PurgeCalls++
	if m.PurgeExpiredError != nil {
		return 0, m.PurgeExpiredError
	}
	var n int64
	for key, token := range m.Tokens {
		if token.ExpiresAt.Before(before) {
			delete(m.Tokens, key)
			n++
		}
	}
	return n, nil
}

// WithTx returns the same mock for testing.
func (m *MockRefreshTokenStore) WithTx(dbtx ports.DBTX) ports.RefreshTokenStore {
	return m
}

// ActiveFor counts the non-revoked tokens of a user.
func (m *MockRefreshTokenStore) ActiveFor(userID int64) int {
	n := 0
	for _, t := range m.Tokens {
		if t.UserID == userID && !t.IsRevoked {
			n++
		}
	}
	return n
}
