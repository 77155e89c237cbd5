package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.UserRepository = (*MockUserRepository)(nil)

// MockUserRepository is an in-memory ports.UserRepository for testing.
// Errors mirror the repository sentinels (db.ErrNoRecord, db.ErrDuplicate).
type MockUserRepository struct {
	Users       map[int64]*domain.User
	Permissions map[domain.UserRole][]domain.Permission
	nextID      int64

	// Mock behavior flags
	CreateError          error
	GetByIDError         error
	GetByEmailError      error
	ListError            error
	DeleteError          error
	UpdateRoleError      error
	UpdatePasswordError  error
	LockAccountError     error
	IncrementFailedError error
	ResetFailedError     error

	// Call tracking
	CreateCalls          int
	DeleteCalls          int
	UpdateRoleCalls      int
	UpdatePasswordCalls  int
	LockAccountCalls     int
	IncrementFailedCalls int
	ResetFailedCalls     int
}

// NewMockUserRepository creates a mock seeded with the default role permissions.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[int64]*domain.User),
		Permissions: map[domain.UserRole][]domain.Permission{
			domain.RoleAdmin: domain.DefaultPermissionsForRole(domain.RoleAdmin),
			domain.RoleUser:  domain.DefaultPermissionsForRole(domain.RoleUser),
		},
	}
}

// Add stores a user as-is and returns it, assigning an ID when missing.
func (m *MockUserRepository) Add(u *domain.User) *domain.User {
	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	} else if u.ID > m.nextID {
		m.nextID = u.ID
	}
	m.Users[u.ID] = u
	return u
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m.CreateCalls++
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	for _, u := range m.Users {
		if u.Email == user.Email {
			return nil, db.ErrDuplicate
		}
	}

	created := *user
	created.ID = 0
	if !created.Role.IsValid() {
		created.Role = domain.RoleUser
	}
	if len(m.Users) == 0 {
		created.Role = domain.RoleAdmin
	}
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	return m.Add(&created), nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDError != nil {
		return nil, m.GetByIDError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, db.ErrNoRecord
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}
	for _, u := range m.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, db.ErrNoRecord
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	if m.ListError != nil {
		return nil, 0, m.ListError
	}
	all := make([]*domain.User, 0, len(m.Users))
	for _, u := range m.Users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := len(all)
	if offset >= total {
		return []*domain.User{}, total, nil
	}
	return all[offset:min(offset+limit, total)], total, nil
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	return len(m.Users), nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	m.UpdatePasswordCalls++
	if m.UpdatePasswordError != nil {
		return m.UpdatePasswordError
	}
	u, ok := m.Users[userID]
	if !ok {
		return db.ErrNoRecord
	}
	u.Password = hashedPassword
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	m.DeleteCalls++
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Users[id]; !ok {
		return db.ErrNoRecord
	}
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	m.IncrementFailedCalls++
	if m.IncrementFailedError != nil {
		return m.IncrementFailedError
	}
	if u, ok := m.Users[userID]; ok {
		u.FailedLoginAttempts++
	}
	return nil
}

func (m *MockUserRepository) ResetFailedAttempts(ctx context.Context, userID int64) error {
	m.ResetFailedCalls++
	if m.ResetFailedError != nil {
		return m.ResetFailedError
	}
	if u, ok := m.Users[userID]; ok {
		u.FailedLoginAttempts = 0
		u.LockedUntil = nil
	}
	return nil
}

func (m *MockUserRepository) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	m.LockAccountCalls++
	if m.LockAccountError != nil {
		return m.LockAccountError
	}
	if u, ok := m.Users[userID]; ok {
		u.LockedUntil = &until
		u.FailedLoginAttempts = 0
	}
	return nil
}

// WithTx returns the same mock, writes are not transactional.
func (m *MockUserRepository) WithTx(dbtx ports.DBTX) ports.AccountSecurityRepository {
	return m
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, userID int64, role domain.UserRole) error {
	m.UpdateRoleCalls++
	if m.UpdateRoleError != nil {
		return m.UpdateRoleError
	}
	u, ok := m.Users[userID]
	if !ok {
		return db.ErrNoRecord
	}
	u.Role = role
	return nil
}

func (m *MockUserRepository) GetPermissionsForRole(ctx context.Context, role domain.UserRole) ([]domain.Permission, error) {
	return m.Permissions[role], nil
}

func (m *MockUserRepository) UserHasPermission(ctx context.Context, userID int64, permission domain.Permission) (bool, error) {
	u, ok := m.Users[userID]
	if !ok {
		return false, nil
	}
	for _, p := range m.Permissions[u.Role] {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}
