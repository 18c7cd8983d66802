// Package repomanager provides the RepositoryManager used by the services,
// wiring together repository constructors, the SQL dialect and database
// migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/migrations"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/files"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/grants"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/notes"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/refreshtokens"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends SQL repository implementations bound to a
// DBTX rewritten for its dialect, and exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// NewRepositoryManager constructs a RepositoryManager for the dialect.
func NewRepositoryManager(d dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: d}
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLRepository(dbx.Bind(db, m.dialect))
}

// Notes returns a notes.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLRepository(dbx.Bind(db, m.dialect))
}

// Files returns a files.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewSQLRepository(dbx.Bind(db, m.dialect))
}

// Grants returns a grants.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Grants(db dbx.DBTX) grants.Repository {
	return grants.NewSQLRepository(dbx.Bind(db, m.dialect))
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewSQLRepository(dbx.Bind(db, m.dialect))
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations for the dialect
// and runs them against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect.GooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, string(m.dialect)); err != nil {
		return err
	}
	return nil
}
