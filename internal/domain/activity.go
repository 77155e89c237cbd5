package domain

import "time"

// UserActivity is an audit entry of a mutating request / Entrée d'audit d'une requête de modification
type UserActivity struct {
	ID         int64
	UserID     int64
	Action     string
	Path       string
	EntityID   string
	StatusCode int
	IPHash     string
	CreatedAt  time.Time
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	UserID int64
	Action string
}
