package db

import "errors"

// Common database errors shared by every dialect / Erreurs communes à tous les dialectes
var (
	ErrNoRecord            = errors.New("no matching record found")
	ErrDuplicate           = errors.New("record already exists")
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")
)

// ErrorTranslator maps a driver error to the sentinels above / Traduit une erreur driver en erreur commune
type ErrorTranslator func(err error) error
