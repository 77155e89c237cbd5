package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
)

func newUser(email string) *domain.User {
	return &domain.User{Email: email, Nom: "Martin", Prenom: "Lea", Password: "hashedpassword123"}
}

func TestSQLiteUserRepo_Create(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()

	// First user should be admin / Premier utilisateur doit être admin
	user, err := repo.Create(context.Background(), newUser("test@example.com"))
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if user.ID == 0 {
		t.Error("Expected user ID to be set")
	}
	if user.Role != domain.RoleAdmin {
		t.Errorf("Expected first user to have role 'admin', got '%s'", user.Role)
	}
	if user.FullName() != "Lea Martin" {
		t.Errorf("Expected full name 'Lea Martin', got '%s'", user.FullName())
	}

	// Second user keeps the requested role / Deuxième utilisateur garde le rôle demandé
	user2, err := repo.Create(context.Background(), newUser("user2@example.com"))
	if err != nil {
		t.Fatalf("Failed to create second user: %v", err)
	}
	if user2.Role != domain.RoleUser {
		t.Errorf("Expected second user to have role 'user', got '%s'", user2.Role)
	}

	_, err = repo.Create(context.Background(), newUser("test@example.com"))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for duplicate email, got %v", err)
	}
}

func TestSQLiteUserRepo_GetByIDAndEmail(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, newUser("test@example.com"))
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	user, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("Failed to get user by ID: %v", err)
	}
	if user.Email != "test@example.com" {
		t.Errorf("Expected email 'test@example.com', got '%s'", user.Email)
	}

	user, err = repo.GetByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to get user by email: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("Expected ID %d, got %d", created.ID, user.ID)
	}

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord for unknown ID, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "notfound@example.com"); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord for unknown email, got %v", err)
	}
}

func TestSQLiteUserRepo_List(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	for _, email := range []string{"user1@example.com", "user2@example.com", "user3@example.com"} {
		if _, err := repo.Create(ctx, newUser(email)); err != nil {
			t.Fatalf("Failed to create %s: %v", email, err)
		}
	}

	users, totalCount, err := repo.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("Failed to list users: %v", err)
	}
	if len(users) != 3 || totalCount != 3 {
		t.Errorf("Expected 3 users and total 3, got %d and %d", len(users), totalCount)
	}

	users, totalCount, err = repo.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("Failed to list users with offset: %v", err)
	}
	if len(users) != 2 || totalCount != 3 {
		t.Errorf("Expected 2 users and total 3, got %d and %d", len(users), totalCount)
	}
}

func TestSQLiteUserRepo_Delete(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	user, _ := repo.Create(ctx, newUser("test@example.com"))

	if err := repo.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}
	if _, err := repo.GetByID(ctx, user.ID); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected deleted user to be hidden, got %v", err)
	}

	// The email is free again / L'email est de nouveau disponible
	if _, err := repo.Create(ctx, newUser("test@example.com")); err != nil {
		t.Errorf("Expected email to be reusable after delete, got %v", err)
	}

	if err := repo.Delete(ctx, 999); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord deleting unknown user, got %v", err)
	}
}

func TestSQLiteUserRepo_UpdateRoleAndPassword(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	repo.Create(ctx, newUser("admin@example.com"))
	user, _ := repo.Create(ctx, newUser("test@example.com"))

	if err := repo.UpdateRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		t.Fatalf("Failed to update role: %v", err)
	}
	if err := repo.UpdatePassword(ctx, user.ID, "newhash"); err != nil {
		t.Fatalf("Failed to update password: %v", err)
	}

	updated, _ := repo.GetByID(ctx, user.ID)
	if updated.Role != domain.RoleAdmin {
		t.Errorf("Expected role 'admin', got '%s'", updated.Role)
	}
	if updated.Password != "newhash" {
		t.Errorf("Expected password hash to be updated, got '%s'", updated.Password)
	}

	if err := repo.UpdateRole(ctx, 999, domain.RoleAdmin); !errors.Is(err, ErrNoRecord) {
		t.Errorf("Expected ErrNoRecord for unknown user, got %v", err)
	}
}

func TestSQLiteUserRepo_AccountSecurity(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	user, _ := repo.Create(ctx, newUser("test@example.com"))

	repo.IncrementFailedAttempts(ctx, user.ID)
	repo.IncrementFailedAttempts(ctx, user.ID)
	updated, _ := repo.GetByID(ctx, user.ID)
	if updated.FailedLoginAttempts != 2 {
		t.Errorf("Expected 2 failed attempts, got %d", updated.FailedLoginAttempts)
	}

	until := time.Now().Add(15 * time.Minute)
	if err := repo.LockAccount(ctx, user.ID, until); err != nil {
		t.Fatalf("Failed to lock account: %v", err)
	}
	updated, _ = repo.GetByID(ctx, user.ID)
	if !updated.IsLocked() {
		t.Error("Expected account to be locked")
	}

	if err := repo.ResetFailedAttempts(ctx, user.ID); err != nil {
		t.Fatalf("Failed to reset failed attempts: %v", err)
	}
	updated, _ = repo.GetByID(ctx, user.ID)
	if updated.FailedLoginAttempts != 0 || updated.LockedUntil != nil {
		t.Errorf("Expected counters cleared, got %d attempts and lock %v", updated.FailedLoginAttempts, updated.LockedUntil)
	}
}

func TestSQLiteUserRepo_Permissions(t *testing.T) {
	_, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	// Seeded permissions must match the domain defaults
	// Les permissions seedées doivent correspondre aux valeurs du domaine
	for _, role := range []domain.UserRole{domain.RoleAdmin, domain.RoleUser} {
		perms, err := repo.GetPermissionsForRole(ctx, role)
		if err != nil {
			t.Fatalf("Failed to get permissions for %s: %v", role, err)
		}
		expected := domain.DefaultPermissionsForRole(role)
		if len(perms) != len(expected) {
			t.Errorf("Role %s: expected %d permissions, got %d", role, len(expected), len(perms))
		}
	}

	admin, _ := repo.Create(ctx, newUser("admin@example.com"))
	user, _ := repo.Create(ctx, newUser("user@example.com"))

	tests := []struct {
		name   string
		userID int64
		perm   domain.Permission
		want   bool
	}{
		{"admin manages users", admin.ID, domain.PermissionUsersManage, true},
		{"user declares production", user.ID, domain.PermissionProductionDecl, true},
		{"user cannot plan", user.ID, domain.PermissionPlanningWrite, false},
		{"unknown user", 999, domain.PermissionStatsRead, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.UserHasPermission(ctx, tt.userID, tt.perm)
			if err != nil {
				t.Fatalf("UserHasPermission failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSQLiteUserRepo_WithTx(t *testing.T) {
	database, adapter := NewTestAdapter(t)
	repo := adapter.UserRepository()
	ctx := context.Background()

	user, _ := repo.Create(ctx, newUser("tx@example.com"))

	tx, err := database.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}

	txRepo := repo.WithTx(tx).(ports.UserRepository)
	if err := txRepo.IncrementFailedAttempts(ctx, user.ID); err != nil {
		t.Fatalf("Failed to increment in transaction: %v", err)
	}
	tx.Rollback()

	updated, _ := repo.GetByID(ctx, user.ID)
	if updated.FailedLoginAttempts != 0 {
		t.Errorf("Expected rolled back counter to be 0, got %d", updated.FailedLoginAttempts)
	}
}
