package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Olprog59/go-prodtrack/internal/ports"
)

// isStrongPassword validates that a password meets security requirements:
//   - At least 8 characters long
//   - Maximum 72 bytes (bcrypt limitation)
//   - Contains at least one uppercase letter, one lowercase letter, one digit
//     and one special character
func isStrongPassword(password string) bool {
	if len(password) < 8 || len(password) > 72 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

// isValidEmail checks RFC 5322 format and the 254 chars limit of RFC 5321.
func isValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// lockEntry tracks a user-specific mutex and its last access time for cleanup.
type lockEntry struct {
	mu       *sync.Mutex
	lastUsed time.Time
}

// formatLockoutDuration formats a duration into a human-readable string.
// Examples: "1 minute", "15 minutes", "45 seconds"
func formatLockoutDuration(d time.Duration) string {
	if d < time.Minute {
		seconds := int(d.Seconds())
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes := int(d.Round(time.Minute).Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
// withTx exécute fn dans une transaction, validée seulement si fn réussit.
func withTx(ctx context.Context, db ports.TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		slog.Error("failed to start transaction", "err", err)
		return errInternal
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "err", err)
		return errInternal
	}
	return nil
}

// required trims s and fails when it ends up empty.
func required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "is required")
	}
	return s, nil
}

// pagination clamps page/limit to sane bounds and returns the SQL offset.
func pagination(page, limit int) (offset, size int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = 20
	case limit > 100:
		limit = 100
	}
	return (page - 1) * limit, limit
}
