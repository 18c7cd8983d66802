package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/minibi/internal/analysis"
	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/server/models"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
)

// AccessGateway is the read path for artifact content. An account may read
// what it owns and what has been shared with it; everything else looks
// absent.
type AccessGateway struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAccessGateway(db *sql.DB, m repomanager.RepositoryManager) *AccessGateway {
	return &AccessGateway{db: db, repomanager: m}
}

func (g *AccessGateway) ReadFileForAccount(ctx context.Context, fileID, accountID int64) ([]byte, bool, error) {
	_, payload, ok, err := g.ReadFileDocument(ctx, fileID, accountID)
	return payload, ok, err
}

// ReadFileDocument is ReadFileForAccount plus the filename.
func (g *AccessGateway) ReadFileDocument(ctx context.Context, fileID, accountID int64) (string, []byte, bool, error) {
	file, err := g.repomanager.Files(g.db).GetReadable(ctx, fileID, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, false, nil
		}
		return "", nil, false, storageErr("read file", err)
	}
	return file.FileName, file.Payload, true, nil
}

func (g *AccessGateway) ReadNoteForAccount(ctx context.Context, noteID, accountID int64) (*models.Note, bool, error) {
	note, err := g.repomanager.Notes(g.db).GetReadable(ctx, noteID, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, storageErr("read note", err)
	}
	return note, true, nil
}

// ReadTable parses a readable file. An unreadable file yields ErrorNotFound.
func (g *AccessGateway) ReadTable(ctx context.Context, fileID, accountID int64) (string, *analysis.Table, error) {
	name, payload, ok, err := g.ReadFileDocument(ctx, fileID, accountID)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, common.ErrorNotFound
	}
	table, err := analysis.Parse(payload)
	if err != nil {
		return "", nil, err
	}
	return name, table, nil
}
