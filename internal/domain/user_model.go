package domain

import (
	"time"
)

// UserRole represents user's role for authorization / Représente le rôle utilisateur pour l'autorisation
type UserRole string

const (
	RoleUser  UserRole = "user"  // Line user (chef de ligne) / Utilisateur de ligne
	RoleAdmin UserRole = "admin" // Plant administrator / Administrateur de l'usine
)

// IsValid checks if role is valid / Vérifie si le rôle est valide
func (r UserRole) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an application account. Admins are users holding RoleAdmin.
// User représente un compte applicatif. Les admins sont des utilisateurs avec RoleAdmin.
type User struct {
	BaseModel
	ID                  int64
	Email               string
	Nom                 string
	Prenom              string
	Password            string // Hashed password / Mot de passe haché
	Role                UserRole
	FailedLoginAttempts int        // Failed login counter / Compteur d'échecs de connexion
	LockedUntil         *time.Time // Account lock expiry / Expiration du verrouillage du compte
}

// FullName returns "Prenom Nom" / Retourne "Prénom Nom"
func (u *User) FullName() string {
	switch {
	case u.Prenom == "":
		return u.Nom
	case u.Nom == "":
		return u.Prenom
	}
	return u.Prenom + " " + u.Nom
}

// IsLocked checks if account is locked / Vérifie si le compte est verrouillé
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// IsAdmin checks admin privileges / Vérifie les privilèges admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RefreshToken represents refresh token entity / Représente l'entité refresh token
type RefreshToken struct {
	Token     string // Hashed token value / Valeur du token hachée
	UserID    int64
	IssueAt   time.Time
	ExpiresAt time.Time
	IsRevoked bool
	IPHash    string // SHA-256 hash of client IP / Hash SHA-256 de l'IP client
	UAHash    string // SHA-256 hash of User-Agent / Hash SHA-256 du User-Agent
}

// IsTokenExpired checks if token expired / Vérifie si le token est expiré
func (rt *RefreshToken) IsTokenExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsTokenValid checks if token is valid / Vérifie si le token est valide
func (rt *RefreshToken) IsTokenValid() bool {
	return !rt.IsRevoked && !rt.IsTokenExpired()
}
