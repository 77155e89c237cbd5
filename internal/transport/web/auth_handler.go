package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Olprog59/go-prodtrack/internal/dto"
	"github.com/Olprog59/go-prodtrack/internal/service"
)

// Login handles user authentication / Gère l'authentification de l'utilisateur
// On success the access and refresh tokens are set as HTTP-only cookies and a
// fresh CSRF token cookie is issued.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.UserDTOReq
	if !decodeJSON(w, r, &req) {
		return
	}

	conf := h.container.Config
	ipHash, uaHash := clientHashes(r, conf)
	user, tokenPair, err := h.container.AuthSvc.Login(r.Context(), req.Email, req.Password, ipHash, uaHash)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			h.container.Metrics.RecordLoginAttempt("failure")
		case errors.Is(err, service.ErrAccountLocked):
			h.container.Metrics.RecordLoginAttempt("locked")
		}
		writeServiceError(w, r, err)
		return
	}

	h.container.Metrics.RecordLoginAttempt("success")
	setAuthCookies(w, conf, tokenPair)
	if err := rotateCSRFToken(w, conf); err != nil {
		slog.Error("failed to generate CSRF token", "err", err)
		ErrorResponse(w, "internal server error", http.StatusInternalServerError)
		return
	}

	perms, err := h.container.UserSvc.Permissions(r.Context(), user.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	jsonResponse(w, map[string]any{
		"user":      dto.UserToDTO(user, perms...),
		"expiresAt": tokenPair.ExpiresAt,
	})
}

// RefreshToken renews the access token / Renouvelle le token d'accès
// The refresh token is read from its cookie, or from the JSON body for non
// browser clients. The old token is revoked and a new pair is bound to the
// client's hashed IP and User-Agent.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		token = cookie.Value
	} else {
		var req dto.RefreshTokenDTOReq
		if !decodeJSON(w, r, &req) {
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		ErrorResponse(w, "refresh token is required", http.StatusBadRequest)
		return
	}

	conf := h.container.Config
	ipHash, uaHash := clientHashes(r, conf)
	tokenPair, err := h.container.AuthSvc.RefreshToken(r.Context(), token, ipHash, uaHash)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			h.container.Metrics.RecordTokenRefresh("invalid")
		}
		writeServiceError(w, r, err)
		return
	}

	h.container.Metrics.RecordTokenRefresh("success")
	setAuthCookies(w, conf, tokenPair)
	jsonResponse(w, tokenPair)
}

// Logout revokes every refresh token of the user and clears the cookies.
// Révoque tous les refresh tokens de l'utilisateur et efface les cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.container.AuthSvc.RevokeAllTokens(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearAuthCookies(w, h.container.Config)
	messageResponse(w, "Logged out successfully")
}

// Me returns current user details / Retourne les détails de l'utilisateur courant
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		ErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	user, err := h.container.UserSvc.GetUser(r.Context(), userID)
	if err != nil {
		// A deleted account keeps a valid access token until it expires.
		ErrorResponse(w, "User not found", http.StatusUnauthorized)
		return
	}
	perms, err := h.container.UserSvc.Permissions(r.Context(), user.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	jsonResponse(w, dto.UserToDTO(user, perms...))
}
