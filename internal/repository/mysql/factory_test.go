package mysql

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Olprog59/go-prodtrack/internal/domain"
	"github.com/Olprog59/go-prodtrack/internal/repository/db"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

func TestHandleError(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, db.ErrDuplicate},
		{"row is referenced", &mysql.MySQLError{Number: 1451}, db.ErrForeignKeyViolation},
		{"no referenced row", &mysql.MySQLError{Number: 1452}, db.ErrForeignKeyViolation},
		{"wrapped duplicate", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), db.ErrDuplicate},
		{"other error passes through", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, handleError(tt.in), tt.want)
		})
	}
	assert.NoError(t, handleError(nil))
}

func TestFactory_ProductDuplicate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO products (ligne, reference, created_at)")).
		WithArgs("L1", "REF-A", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'L1-REF-A'"})

	repo := (&Factory{}).NewProductRepository(conn)
	_, err = repo.Create(context.Background(), &domain.Product{Ligne: "L1", Reference: "REF-A"})
	assert.ErrorIs(t, err, db.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_PlanificationNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT .+ FROM planifications WHERE id = \\?").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = (&Factory{}).NewPlanificationRepository(conn).GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, db.ErrNoRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_CommentaireInUse(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM commentaires WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	err = (&Factory{}).NewCommentaireRepository(conn).Delete(context.Background(), 3)
	assert.ErrorIs(t, err, db.ErrForeignKeyViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_SelectionSumHeures(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(heures), 0) FROM planning_selections")).
		WithArgs("semaine6", "lundi", int64(1042)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(6.5))

	total, err := (&Factory{}).NewSelectionRepository(conn).SumHeures(context.Background(), "semaine6", domain.Lundi, 1042)
	require.NoError(t, err)
	assert.Equal(t, 6.5, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFactory_StatutUpsertFallsBackToUpdate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO statuts_ouvriers")).
		WillReturnError(&mysql.MySQLError{Number: 1062})
	mock.ExpectExec(regexp.QuoteMeta("UPDATE statuts_ouvriers SET nom_prenom = ?, statut = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .+ FROM statuts_ouvriers WHERE matricule = \\? AND date_statut = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "matricule", "nom_prenom", "date_statut", "statut", "created_at", "updated_at"}).
			AddRow(7, 1042, "DUPONT Jean", monday, "AB", monday, monday))

	got, err := (&Factory{}).NewStatutOuvrierRepository(conn).Upsert(context.Background(), &domain.StatutOuvrier{
		Matricule: 1042, NomPrenom: "DUPONT Jean", Date: monday, Statut: domain.StatutAbsent,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, domain.StatutAbsent, got.Statut)
	assert.NoError(t, mock.ExpectationsWereMet())
}
