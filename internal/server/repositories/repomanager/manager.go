package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/files"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/grants"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/notes"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/refreshtokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Notes(db dbx.DBTX) notes.Repository
	Files(db dbx.DBTX) files.Repository
	Grants(db dbx.DBTX) grants.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
