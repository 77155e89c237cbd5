package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/ports"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
)

var _ ports.UserRepository = (*userRepository)(nil)

const userColumns = `id, email, nom, prenom, password, role, failed_login_attempts,
	locked_until, created_at, updated_at, deleted_at`

// userRepository implements UserRepository / Implémente UserRepository
type userRepository struct {
	db          ports.DBTX
	handleError db.ErrorTranslator
}

// NewUserRepository creates user repository / Crée le repository utilisateur
func NewUserRepository(database ports.DBTX, dialect db.ErrorTranslator) ports.UserRepository {
	return &userRepository{db: database, handleError: translator(dialect)}
}

// WithTx returns repository with transaction / Retourne le repository avec transaction
func (r *userRepository) WithTx(dbtx ports.DBTX) ports.AccountSecurityRepository {
	return &userRepository{db: dbtx, handleError: r.handleError}
}

func scanUser(row scanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Nom,
		&u.Prenom,
		&u.Password,
		&u.Role,
		&u.FailedLoginAttempts,
		&u.LockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	)
	return u, err
}

// Create inserts new user; the first active user becomes admin.
// Insère un nouvel utilisateur ; le premier utilisateur actif devient admin.
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	count, err := r.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	role := user.Role
	if !role.IsValid() {
		role = domain.RoleUser
	}
	if count == 0 {
		role = domain.RoleAdmin
	}

	ts := now()
	query := `INSERT INTO users (email, nom, prenom, password, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, user.Email, user.Nom, user.Prenom, user.Password, role, ts, ts)
	if err != nil {
		return nil, r.handleError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, r.handleError(err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves active user by ID / Récupère l'utilisateur actif par ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, r.handleError(err)
	}
	return user, nil
}

// GetByEmail retrieves active user by email / Récupère l'utilisateur actif par email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND deleted_at IS NULL`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, r.handleError(err)
	}
	return user, nil
}

// List retrieves paginated users / Récupère les utilisateurs paginés
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*domain.User, int, error) {
	totalCount, err := r.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY nom, prenom, id
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, r.handleError(err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, r.handleError(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.handleError(err)
	}

	return users, totalCount, nil
}

// CountUsers returns active user count / Retourne le nombre d'utilisateurs actifs
func (r *userRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, r.handleError(err)
	}
	return count, nil
}

// UpdatePassword updates user password / Met à jour le mot de passe
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	query := `UPDATE users
		SET password = ?, failed_login_attempts = 0, locked_until = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, now(), userID)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}

// Delete soft-deletes the user and frees its email for reuse.
// Supprime (soft delete) l'utilisateur et libère son email.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ts := now()
	query := `UPDATE users SET email = ?, deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	tombstone := fmt.Sprintf("deleted-%d-%d:%s", id, ts.Unix(), user.Email)
	res, err := r.db.ExecContext(ctx, query, tombstone, ts, ts, id)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}

// IncrementFailedAttempts increments failed login attempts / Incrémente les tentatives échouées
func (r *userRepository) IncrementFailedAttempts(ctx context.Context, userID int64) error {
	query := `UPDATE users SET failed_login_attempts = failed_login_attempts + 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return r.handleError(err)
}

// ResetFailedAttempts resets failed login attempts / Réinitialise les tentatives échouées
func (r *userRepository) ResetFailedAttempts(ctx context.Context, userID int64) error {
	query := `UPDATE users SET failed_login_attempts = 0, locked_until = NULL WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return r.handleError(err)
}

// LockAccount locks user account / Verrouille le compte utilisateur
func (r *userRepository) LockAccount(ctx context.Context, userID int64, until time.Time) error {
	query := `UPDATE users SET locked_until = ?, failed_login_attempts = 0 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, until.UTC(), userID)
	return r.handleError(err)
}

// UpdateRole changes user role / Change le rôle utilisateur
func (r *userRepository) UpdateRole(ctx context.Context, userID int64, role domain.UserRole) error {
	query := `UPDATE users SET role = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, role, now(), userID)
	if err != nil {
		return r.handleError(err)
	}
	return expectRows(res, r.handleError)
}

// GetPermissionsForRole retrieves permissions for role / Récupère les permissions du rôle
func (r *userRepository) GetPermissionsForRole(ctx context.Context, role domain.UserRole) ([]domain.Permission, error) {
	query := `SELECT permission FROM role_permissions WHERE role = ? ORDER BY permission`
	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, r.handleError(err)
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var perm string
		if err := rows.Scan(&perm); err != nil {
			return nil, r.handleError(err)
		}
		permissions = append(permissions, domain.Permission(perm))
	}
	if err := rows.Err(); err != nil {
		return nil, r.handleError(err)
	}

	return permissions, nil
}

// UserHasPermission checks if user has permission / Vérifie si l'utilisateur a la permission
func (r *userRepository) UserHasPermission(ctx context.Context, userID int64, permission domain.Permission) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM users u
		JOIN role_permissions rp ON u.role = rp.role
		WHERE u.id = ? AND u.deleted_at IS NULL AND rp.permission = ?
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID, permission.String()).Scan(&n); err != nil {
		return false, r.handleError(err)
	}
	return n > 0, nil
}
