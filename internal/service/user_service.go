package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Olprog59/go-prodtrack/internal/config"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const passwordPolicy = "must be at least 8 characters with uppercase, lowercase, digit, and special character"

// UserService handles user management operations / Gère les opérations de gestion des utilisateurs
type UserService struct {
	reader       ports.UserReader
	writer       ports.UserWriter
	roleRepo     ports.RoleRepository
	permRepo     ports.PermissionRepository
	refreshStore ports.RefreshTokenStore
	conf         *config.Config
	metrics      UserMetricsRecorder
}

// UserMetricsRecorder records user metrics / Enregistre les métriques utilisateur
type UserMetricsRecorder interface {
	RecordUserCreated()
}

// NewUserService creates user management service instance / Crée une instance de service de gestion utilisateur
func NewUserService(
	repo ports.UserRepository,
	refreshStore ports.RefreshTokenStore,
	conf *config.Config,
	metrics UserMetricsRecorder,
) *UserService {
	return &UserService{
		reader:       repo,
		writer:       repo,
		roleRepo:     repo,
		permRepo:     repo,
		refreshStore: refreshStore,
		conf:         conf,
		metrics:      metrics,
	}
}

// CreateUserInput carries an account created by an admin.
type CreateUserInput struct {
	Email    string
	Nom      string
	Prenom   string
	Password string
	Role     domain.UserRole
}

// CreateUser creates a new account / Crée un nouveau compte
// The very first account of the plant is promoted to admin by the repository.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !isValidEmail(email) {
		return nil, invalid("email", "invalid email format")
	}
	nom, err := required("nom", in.Nom)
	if err != nil {
		return nil, err
	}
	if !isStrongPassword(in.Password) {
		return nil, invalid("password", passwordPolicy)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.IsValid() {
		return nil, invalid("role", "must be admin or user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.conf.Security.BcryptCost)
	if err != nil {
		slog.Error("failed to hash password", "err", err)
		return nil, errInternal
	}

	user, err := s.writer.Create(ctx, &domain.User{
		Email:    email,
		Nom:      nom,
		Prenom:   strings.TrimSpace(in.Prenom),
		Password: string(hashed),
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("email already registered")
		}
		return nil, repoError("user", err)
	}

	s.metrics.RecordUserCreated()
	slog.Info("user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// EnsureBootstrapAdmin creates the configured admin when no user exists yet.
// Crée l'admin configuré si aucun utilisateur n'existe encore.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, bc config.BootstrapConfig) error {
	if bc.AdminEmail == "" {
		return nil
	}
	count, err := s.reader.CountUsers(ctx)
	if err != nil {
		return repoError("user", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		Email:    bc.AdminEmail,
		Nom:      bc.AdminNom,
		Prenom:   bc.AdminPrenom,
		Password: bc.AdminPassword,
		Role:     domain.RoleAdmin,
	})
	return err
}

// GetUser retrieves a user by their ID / Récupère un utilisateur par son ID
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.reader.GetByID(ctx, id)
	if err != nil {
		return nil, repoError("user", err)
	}
	return user, nil
}

// Permissions lists the permissions granted to a role / Liste les permissions d'un rôle
func (s *UserService) Permissions(ctx context.Context, role domain.UserRole) ([]domain.Permission, error) {
	perms, err := s.permRepo.GetPermissionsForRole(ctx, role)
	if err != nil {
		return nil, repoError("permission", err)
	}
	return perms, nil
}

// ListUsers retrieves a page of users and the total count / Récupère une page d'utilisateurs
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]*domain.User, int, error) {
	offset, size := pagination(page, limit)
	users, total, err := s.reader.List(ctx, offset, size)
	if err != nil {
		slog.Error("failed to list users", "err", err, "offset", offset, "limit", size)
		return nil, 0, errInternal
	}
	return users, total, nil
}

// UpdateUserRole changes a user's role / Change le rôle d'un utilisateur
// An admin cannot change their own role, so at least one admin remains.
func (s *UserService) UpdateUserRole(ctx context.Context, actorID, userID int64, newRole domain.UserRole) error {
	if !newRole.IsValid() {
		return invalid("role", "must be admin or user")
	}
	if actorID == userID {
		return fmt.Errorf("%w: cannot change your own role", ErrForbidden)
	}
	if _, err := s.reader.GetByID(ctx, userID); err != nil {
		return repoError("user", err)
	}

	if err := s.roleRepo.UpdateRole(ctx, userID, newRole); err != nil {
		return repoError("user", err)
	}

	// Tokens carry the role, force a fresh login.
	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens after role change", "user_id", userID, "err", err)
	}
	return nil
}

// ResetPassword sets a new password chosen by an admin / Définit un nouveau mot de passe choisi par un admin
func (s *UserService) ResetPassword(ctx context.Context, userID int64, newPassword string) error {
	if !isStrongPassword(newPassword) {
		return invalid("password", passwordPolicy)
	}
	if _, err := s.reader.GetByID(ctx, userID); err != nil {
		return repoError("user", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.conf.Security.BcryptCost)
	if err != nil {
		slog.Error("failed to hash password", "err", err)
		return errInternal
	}
	if err := s.writer.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return repoError("user", err)
	}

	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens after password reset", "user_id", userID, "err", err)
	}
	return nil
}

// DeleteUser soft-deletes a user / Supprime (soft delete) un utilisateur
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return fmt.Errorf("%w: cannot delete your own account", ErrForbidden)
	}
	if _, err := s.reader.GetByID(ctx, userID); err != nil {
		return repoError("user", err)
	}

	if err := s.refreshStore.RevokeAllForUser(ctx, userID); err != nil {
		slog.Error("failed to revoke tokens during user deletion", "user_id", userID, "err", err)
	}

	if err := s.writer.Delete(ctx, userID); err != nil {
		return repoError("user", err)
	}
	return nil
}
