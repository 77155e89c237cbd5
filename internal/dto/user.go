package dto

import (
	"time"

	"github.com/Olprog59/go-prodtrack/internal/domain"
)

// UserDTOResponse is the public view of an account / Vue publique d'un compte
type UserDTOResponse struct {
	ID          int64     `json:"id"`                    // User unique identifier / Identifiant unique de l'utilisateur
	Email       string    `json:"email"`                 // User email address / Adresse email de l'utilisateur
	Nom         string    `json:"nom,omitempty"`         // Last name / Nom
	Prenom      string    `json:"prenom,omitempty"`      // First name / Prénom
	Role        string    `json:"role"`                  // User role / Rôle de l'utilisateur
	Permissions []string  `json:"permissions,omitempty"` // Granted permissions / Permissions accordées
	CreatedAt   time.Time `json:"createdAt"`
}

// UserDTOReq is DTO for login requests / Est le DTO pour les demandes de connexion
type UserDTOReq struct {
	Email    string `json:"email"`    // User email / Email de l'utilisateur
	Password string `json:"password"` // User password / Mot de passe de l'utilisateur
}

// CreateUserDTOReq is an account created by an admin / Compte créé par un administrateur
type CreateUserDTOReq struct {
	Email    string `json:"email"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateRoleDTOReq changes the role of an account.
type UpdateRoleDTOReq struct {
	Role string `json:"role"`
}

// PasswordResetDTO is an admin-driven password reset / Réinitialisation par un administrateur
type PasswordResetDTO struct {
	NewPassword string `json:"new_password"` // New password / Nouveau mot de passe
}

// RefreshTokenDTOReq carries the refresh token when it is not sent as a cookie.
type RefreshTokenDTOReq struct {
	RefreshToken string `json:"refresh_token"`
}

// UserToDTO converts domain.User to UserDTOResponse / Convertit domain.User en UserDTOResponse
// The password hash and lockout fields never leave the service layer.
func UserToDTO(user *domain.User, perms ...domain.Permission) *UserDTOResponse {
	out := &UserDTOResponse{
		ID:        user.ID,
		Email:     user.Email,
		Nom:       user.Nom,
		Prenom:    user.Prenom,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	for _, p := range perms {
		out.Permissions = append(out.Permissions, p.String())
	}
	return out
}

// PaginationDTO is the metadata returned with paged lists.
type PaginationDTO struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count / Calcule le nombre de pages
func NewPagination(total, page, limit int) PaginationDTO {
	if limit < 1 {
		limit = 1
	}
	return PaginationDTO{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// ActivityDTOResponse is one audit log entry / Entrée du journal d'audit
type ActivityDTOResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Action     string    `json:"action"`
	Path       string    `json:"path"`
	EntityID   string    `json:"entityId,omitempty"`
	StatusCode int       `json:"statusCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

func ActivityToDTO(a *domain.UserActivity) ActivityDTOResponse {
	return ActivityDTOResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		Action:     a.Action,
		Path:       a.Path,
		EntityID:   a.EntityID,
		StatusCode: a.StatusCode,
		CreatedAt:  a.CreatedAt,
	}
}
