// Package notes declares the repository contract for notes and its SQL
// implementation. Every mutating query is scoped by the owning account.
package notes

import (
	"context"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

type Repository interface {
	// Create stores note.Content for note.AccountID and fills in ID and CreatedAt.
	Create(ctx context.Context, note *models.Note) (*models.Note, error)

	// Update replaces the content when the note exists and is owned by
	// accountID. It reports whether a row changed.
	Update(ctx context.Context, id, accountID int64, content string) (bool, error)

	GetByID(ctx context.Context, id int64) (*models.Note, error)

	// GetReadable returns the note when accountID owns it or holds a grant
	// on it, and common.ErrorNotFound otherwise.
	GetReadable(ctx context.Context, id, accountID int64) (*models.Note, error)

	// ListByAccount returns the account's notes, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Note, error)

	// ListSharedWith returns the notes shared with accountID, newest first.
	ListSharedWith(ctx context.Context, accountID int64) ([]*models.SharedNote, error)

	Delete(ctx context.Context, id, accountID int64) (bool, error)
	DeleteByAccount(ctx context.Context, accountID int64) (int64, error)
}
