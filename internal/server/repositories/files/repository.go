// Package files declares the repository contract for uploaded CSV files and
// its SQL implementation. Filenames are unique per owning account.
package files

import (
	"context"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

type Repository interface {
	// Create stores the file and fills in ID and UploadedAt. A filename the
	// owner already uses yields common.ErrNameCollision.
	Create(ctx context.Context, file *models.File) (*models.File, error)

	// GetByID returns file metadata without the payload.
	GetByID(ctx context.Context, id int64) (*models.File, error)

	// NameTaken reports whether accountID owns a file called name other
	// than excludeID. Pass 0 to exclude nothing.
	NameTaken(ctx context.Context, accountID int64, name string, excludeID int64) (bool, error)

	Rename(ctx context.Context, id, accountID int64, name string) (bool, error)

	// ListByAccount returns metadata for the account's files, newest first.
	ListByAccount(ctx context.Context, accountID int64) ([]*models.File, error)

	// ListSharedWith returns the files shared with accountID, newest grant first.
	ListSharedWith(ctx context.Context, accountID int64) ([]*models.SharedFile, error)

	// GetOwnedPayload returns the payload only when accountID owns the file.
	GetOwnedPayload(ctx context.Context, id, accountID int64) ([]byte, error)

	// GetReadable returns the file with its payload when accountID owns it
	// or holds a grant on it, and common.ErrorNotFound otherwise.
	GetReadable(ctx context.Context, id, accountID int64) (*models.File, error)

	Delete(ctx context.Context, id, accountID int64) (bool, error)
	DeleteByAccount(ctx context.Context, accountID int64) (int64, error)
}
