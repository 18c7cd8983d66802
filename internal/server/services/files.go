package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/minibi/internal/analysis"
	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/models"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
)

type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager) *FileService {
	return &FileService{db: db, repomanager: m}
}

// Save stores payload verbatim under filename for ownerID. The payload must
// parse as CSV with a header row, and the name must be free for this owner.
func (s *FileService) Save(ctx context.Context, ownerID int64, filename string, payload []byte) (*models.File, error) {
	name, err := ValidateFileName(filename)
	if err != nil {
		return nil, err
	}
	if _, err := analysis.Parse(payload); err != nil {
		return nil, err
	}

	var file *models.File
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		taken, err := repo.NameTaken(ctx, ownerID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrNameCollision
		}

		file, err = repo.Create(ctx, &models.File{AccountID: ownerID, FileName: name, Payload: payload})
		return err
	})
	if err != nil {
		return nil, storageErr("save file", err)
	}
	return file, nil
}

// Rename checks, in order: the file exists, ownerID owns it, the new name
// is valid, and no other file of the owner uses it. The stored name is
// unchanged on any failure.
func (s *FileService) Rename(ctx context.Context, fileID, ownerID int64, newName string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		file, err := repo.GetByID(ctx, fileID)
		if err != nil {
			return err
		}
		if file.AccountID != ownerID {
			return common.ErrNotOwner
		}

		name, err := ValidateFileName(newName)
		if err != nil {
			return err
		}

		taken, err := repo.NameTaken(ctx, ownerID, name, fileID)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrNameCollision
		}

		ok, err := repo.Rename(ctx, fileID, ownerID, name)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrorNotFound
		}
		return nil
	})
	return storageErr("rename file", err)
}

func (s *FileService) List(ctx context.Context, ownerID int64) ([]*models.File, error) {
	files, err := s.repomanager.Files(s.db).ListByAccount(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list files", err)
	}
	return files, nil
}

// ReadOwned returns the payload only when ownerID owns fileID. Shared
// readers go through AccessGateway.ReadFileForAccount instead.
func (s *FileService) ReadOwned(ctx context.Context, fileID, ownerID int64) ([]byte, bool, error) {
	payload, err := s.repomanager.Files(s.db).GetOwnedPayload(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, storageErr("read file", err)
	}
	return payload, true, nil
}

// Delete removes an owned file and its grants in one transaction.
func (s *FileService) Delete(ctx context.Context, fileID, ownerID int64) (bool, error) {
	var deleted bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		deleted, err = deleteOwned(ctx, s.repomanager, tx, models.KindFile, fileID, ownerID)
		return err
	})
	if err != nil {
		return false, storageErr("delete file", err)
	}
	return deleted, nil
}
