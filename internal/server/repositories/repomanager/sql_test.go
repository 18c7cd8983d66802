package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/dbtest"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/files"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/grants"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/notes"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/refreshtokens"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var m RepositoryManager = NewRepositoryManager(dbx.Postgres)

	var _ accounts.Repository = m.Accounts(db)
	var _ notes.Repository = m.Notes(db)
	var _ files.Repository = m.Files(db)
	var _ grants.Repository = m.Grants(db)
	var _ refreshtokens.Repository = m.RefreshTokens(db)

	if m.Accounts(db) == nil || m.Notes(db) == nil || m.Files(db) == nil || m.Grants(db) == nil || m.RefreshTokens(db) == nil {
		t.Fatal("factory returned nil")
	}
}

func TestRunMigrations_UsesDialectDirectory(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	for _, d := range []dbx.Dialect{dbx.SQLite, dbx.Postgres} {
		var gotDir string
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			gotDir = dir
			return nil
		}
		require.NoError(t, NewRepositoryManager(d).RunMigrations(context.Background(), db))
		assert.Equal(t, string(d), gotDir)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := NewRepositoryManager(dbx.SQLite).RunMigrations(context.Background(), db)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen_SQLiteMigratesSchema(t *testing.T) {
	db, m, err := Open(context.Background(), "sqlite", dbtest.DSN(t.TempDir()))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, dbx.SQLite, m.Dialect())
	for _, table := range []string{"accounts", "notes", "files", "note_grants", "file_grants", "refresh_tokens"} {
		assert.Equal(t, 0, dbtest.Count(t, db, table, ""), table)
	}

	_, err = m.Accounts(db).ListUserNames(context.Background())
	require.NoError(t, err)
}

func TestOpen_Errors(t *testing.T) {
	_, _, err := Open(context.Background(), "oracle", "x")
	require.Error(t, err)

	orig := sqlOpen
	defer func() { sqlOpen = orig }()
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		return nil, errors.New("no driver")
	}
	_, _, err = Open(context.Background(), "postgres", "postgres://x")
	require.ErrorContains(t, err, "db open error")
}
