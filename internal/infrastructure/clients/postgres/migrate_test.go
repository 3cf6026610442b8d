package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/migrations"
)

func TestMigrate_SkipsAppliedVersions(t *testing.T) {
	client, mock := newMockClient(t)

	pending := []migrations.Migration{
		{Version: "001_initial_schema.sql", SQL: "CREATE TABLE users (id TEXT)"},
		{Version: "002_more.sql", SQL: "CREATE TABLE doctors (id TEXT)"},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("001_initial_schema.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").WithArgs("002_more.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE doctors").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_more.sql").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := client.Migrate(context.Background(), pending)

	require.NoError(t, err)
	assert.Equal(t, []string{"002_more.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrations(t *testing.T) {
	all, err := migrations.All()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, "001_initial_schema.sql", all[0].Version)
	assert.Contains(t, all[0].SQL, "uq_appointments_active_slot")
}

func TestAppliedMigrations(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_initial_schema.sql"))

	versions, err := client.AppliedMigrations(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"001_initial_schema.sql"}, versions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
