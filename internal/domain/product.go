package domain

import "time"

// Product is a reference manufactured on a production line / Référence fabriquée sur une ligne
type Product struct {
	ID        int64
	Ligne     string
	Reference string
	CreatedAt time.Time
}
