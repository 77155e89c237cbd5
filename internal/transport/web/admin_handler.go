package web

import (
	"log/slog"
	"net/http"

	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/dto"
	"github.com/Olprog59/go-prodtrack/internal/service"
)

// CreateUser creates an account / Crée un compte
// Accounts are only created by admins, there is no self-registration.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.container.UserSvc.CreateUser(r.Context(), service.CreateUserInput{
		Email:    req.Email,
		Nom:      req.Nom,
		Prenom:   req.Prenom,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	createdResponse(w, dto.UserToDTO(user))
}

// ListUsers returns paginated list of users / Retourne la liste paginée des utilisateurs
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := max(queryInt(r, "page", 1), 1)
	limit := queryInt(r, "limit", 20)
	if limit < 1 {
		limit = 20
	}
	limit = min(limit, 100)

	users, total, err := h.container.UserSvc.ListUsers(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	userDTOs := make([]*dto.UserDTOResponse, len(users))
	for i, user := range users {
		userDTOs[i] = dto.UserToDTO(user)
	}

	jsonResponse(w, map[string]any{
		"users":      userDTOs,
		"pagination": dto.NewPagination(total, page, limit),
	})
}

// UpdateUserRole updates user role / Met à jour le rôle d'un utilisateur
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	actorID, _ := UserIDFrom(r.Context())
	if err := h.container.UserSvc.UpdateUserRole(r.Context(), actorID, userID, domain.UserRole(req.Role)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Role changes are sensitive, the admin's CSRF token is rotated.
	if err := rotateCSRFToken(w, h.container.Config); err != nil {
		slog.Error("failed to rotate CSRF token after role update", "err", err)
	}
	messageResponse(w, "User role updated successfully")
}

// ResetUserPassword sets a new password for a user / Définit un nouveau mot de passe
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}
	var req dto.PasswordResetDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.container.UserSvc.ResetPassword(r.Context(), userID, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "Password has been reset successfully")
}

// DeleteUser deletes a user by ID / Supprime un utilisateur par ID
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathInt64(w, r, "id")
	if !ok {
		return
	}

	actorID, _ := UserIDFrom(r.Context())
	if err := h.container.UserSvc.DeleteUser(r.Context(), actorID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	messageResponse(w, "User deleted successfully")
}

// ListActivity returns the audit log, newest first / Retourne le journal d'audit
func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	page := max(queryInt(r, "page", 1), 1)
	limit := min(max(queryInt(r, "limit", 50), 1), 100)
	filter := domain.ActivityFilter{
		UserID: int64(queryInt(r, "user_id", 0)),
		Action: r.URL.Query().Get("action"),
	}

	entries, total, err := h.container.ActivitySvc.List(r.Context(), filter, page, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, map[string]any{
		"activities": dto.ListToDTO(entries, dto.ActivityToDTO),
		"pagination": dto.NewPagination(total, page, limit),
	})
}
