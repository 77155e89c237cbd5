package ports

import (
	"context"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// UserReader looks up accounts. Soft-deleted accounts are invisible.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns one page of accounts ordered by id and the total count.
	List(ctx context.Context, offset, limit int) ([]*domain.User, int, error)
	CountUsers(ctx context.Context) (int, error)
}

// UserWriter manages accounts created by plant admins.
// Gère les comptes créés par les administrateurs de l'usine.
type UserWriter interface {
	// Create inserts the account; on an empty table the role is forced to admin.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	Delete(ctx context.Context, id int64) error
}

// AccountSecurityRepository tracks failed logins and lockouts. Login runs it
// inside the same transaction as the refresh token write.
type AccountSecurityRepository interface {
	IncrementFailedAttempts(ctx context.Context, userID int64) error
	ResetFailedAttempts(ctx context.Context, userID int64) error
	LockAccount(ctx context.Context, userID int64, until time.Time) error
	WithTx(dbtx DBTX) AccountSecurityRepository
}

// RoleRepository switches an account between line user and admin.
type RoleRepository interface {
	UpdateRole(ctx context.Context, userID int64, role domain.UserRole) error
}

// PermissionRepository reads the role_permissions table seeded by migration.
// Lit la table role_permissions alimentée par migration.
type PermissionRepository interface {
	GetPermissionsForRole(ctx context.Context, role domain.UserRole) ([]domain.Permission, error)
	UserHasPermission(ctx context.Context, userID int64, permission domain.Permission) (bool, error)
}

// UserRepository groups every account operation behind one store.
type UserRepository interface {
	UserReader
	UserWriter
	AccountSecurityRepository
	RoleRepository
	PermissionRepository
}
