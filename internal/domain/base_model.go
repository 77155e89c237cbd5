package domain

import "time"

// BaseModel carries the audit timestamps of soft-deletable records.
// Only accounts are soft-deleted, production data is removed for good.
type BaseModel struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time // nil while the record is live / nil tant que l'enregistrement est actif
}

// IsDeleted checks if soft-deleted / Vérifie si supprimé (soft delete)
func (bm *BaseModel) IsDeleted() bool {
	return bm.DeletedAt != nil
}
