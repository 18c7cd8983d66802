package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/models"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
)

// SharingService grants and revokes read access to notes and files. Only
// an artifact's owner may share it, never with itself, and at most once
// per target.
type SharingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSharingService(db *sql.DB, m repomanager.RepositoryManager) *SharingService {
	return &SharingService{db: db, repomanager: m}
}

func (s *SharingService) ShareNote(ctx context.Context, noteID, ownerID int64, targetUsername string) error {
	return s.share(ctx, models.KindNote, noteID, ownerID, targetUsername)
}

func (s *SharingService) ShareFile(ctx context.Context, fileID, ownerID int64, targetUsername string) error {
	return s.share(ctx, models.KindFile, fileID, ownerID, targetUsername)
}

func (s *SharingService) share(ctx context.Context, kind models.ArtifactKind, artifactID, ownerID int64, targetUsername string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		targetID, err := resolveTarget(ctx, s.repomanager, tx, targetUsername)
		if err != nil {
			return err
		}
		if targetID == ownerID {
			return common.ErrSelfShare
		}

		if err := requireOwner(ctx, s.repomanager, tx, kind, artifactID, ownerID); err != nil {
			return err
		}

		grants := s.repomanager.Grants(tx)
		exists, err := grants.Exists(ctx, kind, artifactID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrAlreadyShared
		}
		return grants.Create(ctx, kind, artifactID, targetID)
	})
	return storageErr("share "+string(kind), err)
}

func (s *SharingService) RevokeNote(ctx context.Context, noteID, ownerID int64, targetUsername string) (bool, error) {
	return s.revoke(ctx, models.KindNote, noteID, ownerID, targetUsername)
}

func (s *SharingService) RevokeFile(ctx context.Context, fileID, ownerID int64, targetUsername string) (bool, error) {
	return s.revoke(ctx, models.KindFile, fileID, ownerID, targetUsername)
}

func (s *SharingService) revoke(ctx context.Context, kind models.ArtifactKind, artifactID, ownerID int64, targetUsername string) (bool, error) {
	var removed bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := requireOwner(ctx, s.repomanager, tx, kind, artifactID, ownerID); err != nil {
			return err
		}
		targetID, err := resolveTarget(ctx, s.repomanager, tx, targetUsername)
		if err != nil {
			return err
		}
		removed, err = s.repomanager.Grants(tx).Delete(ctx, kind, artifactID, targetID)
		return err
	})
	if err != nil {
		return false, storageErr("revoke "+string(kind), err)
	}
	return removed, nil
}

// ListGrants returns who an owned artifact is shared with, oldest grant first.
func (s *SharingService) ListGrants(ctx context.Context, kind models.ArtifactKind, artifactID, ownerID int64) ([]*models.Grant, error) {
	if err := requireOwner(ctx, s.repomanager, s.db, kind, artifactID, ownerID); err != nil {
		return nil, storageErr("list grants", err)
	}
	grants, err := s.repomanager.Grants(s.db).ListByArtifact(ctx, kind, artifactID)
	if err != nil {
		return nil, storageErr("list grants", err)
	}
	return grants, nil
}

// ListSharedNotesFor returns the notes other accounts shared with accountID.
func (s *SharingService) ListSharedNotesFor(ctx context.Context, accountID int64) ([]*models.SharedNote, error) {
	notes, err := s.repomanager.Notes(s.db).ListSharedWith(ctx, accountID)
	if err != nil {
		return nil, storageErr("list shared notes", err)
	}
	return notes, nil
}

// ListSharedFilesFor returns the files other accounts shared with accountID.
func (s *SharingService) ListSharedFilesFor(ctx context.Context, accountID int64) ([]*models.SharedFile, error) {
	files, err := s.repomanager.Files(s.db).ListSharedWith(ctx, accountID)
	if err != nil {
		return nil, storageErr("list shared files", err)
	}
	return files, nil
}

func resolveTarget(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, username string) (int64, error) {
	account, err := m.Accounts(db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrUserNotFound
		}
		return 0, err
	}
	return account.ID, nil
}
