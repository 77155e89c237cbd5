package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Olprog59/go-prodtrack/internal/repository"
)

// Common service errors / Erreurs communes des services
var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrAccountLocked      = errors.New("account locked due to multiple failed login attempts")
	ErrInvalidToken       = errors.New("invalid refresh token")

	errInternal = errors.New("internal server error")
)

// ValidationError reports an invalid input field / Signale un champ invalide
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

func conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// repoError maps repository sentinels to service errors. Anything else is
// logged and hidden behind errInternal.
func repoError(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNoRecord):
		return notFound(entity)
	case errors.Is(err, repository.ErrDuplicate):
		return conflict("%s already exists", entity)
	case errors.Is(err, repository.ErrForeignKeyViolation):
		return conflict("%s is linked to other records", entity)
	}
	slog.Error("repository failure", "entity", entity, "err", err)
	return errInternal
}
