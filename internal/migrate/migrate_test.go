package migrate

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_SortedAndNonEmpty(t *testing.T) {
	ms, err := All()
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Name, ms[i].Name)
	}
	joined := ""
	for _, m := range ms {
		joined += m.SQL
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS membership_applications",
		"CREATE OR REPLACE VIEW membership_directory",
		"CREATE TABLE IF NOT EXISTS subscribers",
		"pg_notify('table_changes'",
	} {
		assert.True(t, strings.Contains(joined, want), want)
	}
}

func TestUp_AppliesOnlyPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := NewRunnerWith(db, []Migration{
		{Name: "001_a.sql", SQL: "CREATE TABLE a (id INT)"},
		{Name: "002_b.sql", SQL: "CREATE TABLE b (id INT)"},
	})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_a.sql"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_b.sql").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := r.Up(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"002_b.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUp_StopsAtFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := NewRunnerWith(db, []Migration{
		{Name: "001_a.sql", SQL: "CREATE TABLE a (id INT)"},
		{Name: "002_b.sql", SQL: "CREATE TABLE b (id INT)"},
	})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := r.Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply 001_a.sql")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
