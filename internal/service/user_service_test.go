package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture() (*UserService, *mocks.MockUserRepository, *mocks.MockRefreshTokenStore, *mocks.MockMetrics) {
	users := mocks.NewMockUserRepository()
	tokens := mocks.NewMockRefreshTokenStore()
	m := mocks.NewMockMetrics()
	return NewUserService(users, tokens, testConfig(), m), users, tokens, m
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	valid := CreateUserInput{Email: "Chef@Plant.local ", Nom: "Chef", Password: testPassword}

	tests := []struct {
		name      string
		mutate    func(in *CreateUserInput)
		wantField string
	}{
		{name: "invalid email", mutate: func(in *CreateUserInput) { in.Email = "not-an-email" }, wantField: "email"},
		{name: "missing nom", mutate: func(in *CreateUserInput) { in.Nom = "" }, wantField: "nom"},
		{name: "weak password", mutate: func(in *CreateUserInput) { in.Password = "password" }, wantField: "password"},
		{name: "unknown role", mutate: func(in *CreateUserInput) { in.Role = "superuser" }, wantField: "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _, _ := newUserFixture()
			in := valid
			tt.mutate(&in)
			_, err := svc.CreateUser(ctx, in)
			assertValidation(t, err, tt.wantField)
			assert.Zero(t, users.CreateCalls)
		})
	}

	t.Run("first user becomes admin", func(t *testing.T) {
		svc, _, _, m := newUserFixture()
		u, err := svc.CreateUser(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "chef@plant.local", u.Email)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(testPassword)))
		assert.Equal(t, 1, m.UserCreatedCalls)

		second, err := svc.CreateUser(ctx, CreateUserInput{Email: "op@plant.local", Nom: "Op", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, second.Role)

		_, err = svc.CreateUser(ctx, valid)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("repository failure is hidden", func(t *testing.T) {
		svc, users, _, _ := newUserFixture()
		users.CreateError = errors.New("connection reset")
		_, err := svc.CreateUser(ctx, valid)
		assert.ErrorIs(t, err, errInternal)
	})
}

func TestUserService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	bc := config.BootstrapConfig{AdminEmail: "admin@plant.local", AdminPassword: testPassword, AdminNom: "Admin"}

	t.Run("disabled without email", func(t *testing.T) {
		svc, users, _, _ := newUserFixture()
		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, config.BootstrapConfig{}))
		assert.Empty(t, users.Users)
	})

	t.Run("creates admin once", func(t *testing.T) {
		svc, users, _, _ := newUserFixture()
		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, bc))
		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, bc))
		assert.Len(t, users.Users, 1)
		assert.Equal(t, 1, users.CreateCalls)
	})

	t.Run("weak password is refused", func(t *testing.T) {
		svc, _, _, _ := newUserFixture()
		weak := bc
		weak.AdminPassword = "admin"
		assertValidation(t, svc.EnsureBootstrapAdmin(ctx, weak), "password")
	})
}

func TestUserService_Administration(t *testing.T) {
	ctx := context.Background()
	svc, users, tokens, _ := newUserFixture()
	admin := users.Add(&domain.User{Email: "admin@plant.local", Role: domain.RoleAdmin})
	op := users.Add(&domain.User{Email: "op@plant.local", Role: domain.RoleUser})
	tokens.Tokens["t1"] = &domain.RefreshToken{Token: "t1", UserID: op.ID}

	t.Run("list paginates", func(t *testing.T) {
		page, total, err := svc.ListUsers(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, page, 1)
		assert.Equal(t, op.ID, page[0].ID)
	})

	t.Run("role change", func(t *testing.T) {
		assertValidation(t, svc.UpdateUserRole(ctx, admin.ID, op.ID, "boss"), "role")
		assert.ErrorIs(t, svc.UpdateUserRole(ctx, admin.ID, admin.ID, domain.RoleUser), ErrForbidden)
		assert.ErrorIs(t, svc.UpdateUserRole(ctx, admin.ID, 99, domain.RoleAdmin), ErrNotFound)

		require.NoError(t, svc.UpdateUserRole(ctx, admin.ID, op.ID, domain.RoleAdmin))
		assert.Equal(t, domain.RoleAdmin, op.Role)
		assert.Zero(t, tokens.ActiveFor(op.ID))
	})

	t.Run("password reset", func(t *testing.T) {
		assertValidation(t, svc.ResetPassword(ctx, op.ID, "short"), "password")
		require.NoError(t, svc.ResetPassword(ctx, op.ID, "N3w!Secret"))
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(op.Password), []byte("N3w!Secret")))
	})

	t.Run("permissions by role", func(t *testing.T) {
		perms, err := svc.Permissions(ctx, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Contains(t, perms, domain.PermissionSystemAdmin)
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrForbidden)
		require.NoError(t, svc.DeleteUser(ctx, admin.ID, op.ID))
		_, err := svc.GetUser(ctx, op.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, op.ID), ErrNotFound)
	})
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, limit  int
		offset, size int
	}{
		{page: 0, limit: 0, offset: 0, size: 20},
		{page: 3, limit: 10, offset: 20, size: 10},
		{page: 1, limit: 500, offset: 0, size: 100},
		{page: -4, limit: 5, offset: 0, size: 5},
	}
	for _, tt := range tests {
		offset, size := pagination(tt.page, tt.limit)
		assert.Equal(t, tt.offset, offset)
		assert.Equal(t, tt.size, size)
	}
}

func TestRepoError(t *testing.T) {
	assert.NoError(t, repoError("x", nil))
	assert.ErrorIs(t, repoError("ouvrier", errors.New("boom")), errInternal)
	assert.EqualError(t, notFound("ouvrier"), "ouvrier not found")
	assert.EqualError(t, conflict("slot %d taken", 3), "slot 3 taken: conflict")
	assert.EqualError(t, invalid("jour", "unknown day %q", "x"), `jour: unknown day "x"`)
}

func TestFormatLockoutDuration(t *testing.T) {
	assert.Equal(t, "1 second", formatLockoutDuration(time.Second))
	assert.Equal(t, "45 seconds", formatLockoutDuration(45*time.Second))
	assert.Equal(t, "1 minute", formatLockoutDuration(time.Minute))
	assert.Equal(t, "15 minutes", formatLockoutDuration(15*time.Minute))
}
