package mysql

import (
	"errors"

	"github.com/Olprog59/go-prodtrack/internal/repository/db"
	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers / Numéros d'erreur du serveur MySQL
const (
	erDupEntry        = 1062 // ER_DUP_ENTRY
	erRowIsReferenced = 1451 // ER_ROW_IS_REFERENCED_2
	erNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// handleError translates MySQL errors to typed errors / Traduit les erreurs MySQL en erreurs typées
func handleError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case erDupEntry:
			return db.ErrDuplicate
		case erRowIsReferenced, erNoReferencedRow:
			return db.ErrForeignKeyViolation
		}
	}
	return err
}
