package web

import (
	"context"

	"github.com/Olprog59/go-prodtrack/internal/service/auth"
)

// ContextKey is a custom type used for creating context keys.
// Using a custom type for context keys helps prevent collisions between keys
// defined in different packages.
type ContextKey string

const (
	// ClaimsContextKey stores the validated JWT claims set by the Auth middleware.
	ClaimsContextKey = ContextKey("claims")
	// UserIDContextKey stores the authenticated user ID (int64).
	UserIDContextKey = ContextKey("user_id")
	// RequestIDContextKey stores the request ID set by the RequestID middleware.
	RequestIDContextKey = ContextKey("request_id")
)

// GetRequestID extracts request ID from context / Extrait l'ID de la requête du contexte
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return requestID
	}
	return ""
}

// UserIDFrom returns the authenticated user ID, if any.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDContextKey).(int64)
	return id, ok
}

// ClaimsFrom returns the JWT claims of the request, if any.
func ClaimsFrom(ctx context.Context) (*auth.CustomClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.CustomClaims)
	return claims, ok
}
