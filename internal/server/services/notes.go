package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/models"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
)

type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: note content is empty", common.ErrValidation)
	}
	return content, nil
}

func (s *NoteService) Create(ctx context.Context, ownerID int64, content string) (*models.Note, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}

	note, err := s.repomanager.Notes(s.db).Create(ctx, &models.Note{AccountID: ownerID, Content: content})
	if err != nil {
		return nil, storageErr("create note", err)
	}
	return note, nil
}

// Edit replaces the note content. A missing note yields ErrorNotFound and
// someone else's note yields ErrNotOwner.
func (s *NoteService) Edit(ctx context.Context, noteID, ownerID int64, content string) error {
	content, err := normalizeContent(content)
	if err != nil {
		return err
	}

	repo := s.repomanager.Notes(s.db)

	ok, err := repo.Update(ctx, noteID, ownerID, content)
	if err != nil {
		return storageErr("update note", err)
	}
	if ok {
		return nil
	}

	if _, err := repo.GetByID(ctx, noteID); err != nil {
		return storageErr("get note", err)
	}
	return common.ErrNotOwner
}

func (s *NoteService) List(ctx context.Context, ownerID int64) ([]*models.Note, error) {
	notes, err := s.repomanager.Notes(s.db).ListByAccount(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	return notes, nil
}

// Delete removes an owned note together with its grants. It reports
// false, and touches nothing, when ownerID does not own noteID.
func (s *NoteService) Delete(ctx context.Context, noteID, ownerID int64) (bool, error) {
	var deleted bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		deleted, err = deleteOwned(ctx, s.repomanager, tx, models.KindNote, noteID, ownerID)
		return err
	})
	if err != nil {
		return false, storageErr("delete note", err)
	}
	return deleted, nil
}

// deleteOwned drops the grants on an artifact and then the artifact row.
// Grants reference the row, so they have to go first. Nothing is touched
// unless ownerID owns the artifact.
func deleteOwned(ctx context.Context, m repomanager.RepositoryManager, tx dbx.DBTX, kind models.ArtifactKind, id, ownerID int64) (bool, error) {
	if err := requireOwner(ctx, m, tx, kind, id, ownerID); err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrNotOwner) {
			return false, nil
		}
		return false, err
	}

	if _, err := m.Grants(tx).DeleteByArtifact(ctx, kind, id); err != nil {
		return false, fmt.Errorf("error deleting %s grants: %w", kind, err)
	}

	if kind == models.KindNote {
		return m.Notes(tx).Delete(ctx, id, ownerID)
	}
	return m.Files(tx).Delete(ctx, id, ownerID)
}

// ownerOf returns the owning account of an artifact, or ErrorNotFound.
func ownerOf(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, kind models.ArtifactKind, id int64) (int64, error) {
	switch kind {
	case models.KindNote:
		n, err := m.Notes(db).GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return n.AccountID, nil
	case models.KindFile:
		f, err := m.Files(db).GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		return f.AccountID, nil
	}
	return 0, fmt.Errorf("%w: unknown artifact kind %q", common.ErrValidation, kind)
}

// requireOwner checks that accountID owns the artifact.
func requireOwner(ctx context.Context, m repomanager.RepositoryManager, db dbx.DBTX, kind models.ArtifactKind, id, accountID int64) error {
	owner, err := ownerOf(ctx, m, db, kind, id)
	if err != nil {
		return err
	}
	if owner != accountID {
		return common.ErrNotOwner
	}
	return nil
}
