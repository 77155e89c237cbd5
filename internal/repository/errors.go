package repository

import "github.com/Olprog59/go-prodtrack/internal/repository/db"

// Storage errors shared by both dialects, re-exported so services only import
// this package. Erreurs de stockage communes aux deux dialectes.
var (
	ErrNoRecord            = db.ErrNoRecord
	ErrDuplicate           = db.ErrDuplicate
	ErrForeignKeyViolation = db.ErrForeignKeyViolation
)
