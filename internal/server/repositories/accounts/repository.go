// Package accounts declares the repository contract for registered accounts
// and its SQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

type Repository interface {
	// Create inserts the account and fills in its ID and CreatedAt.
	// A taken username yields common.ErrAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// ListUserNames returns every username in lexicographic order.
	ListUserNames(ctx context.Context) ([]string, error)

	// Delete removes the account row only. Rows that reference it must be
	// removed first.
	Delete(ctx context.Context, id int64) (bool, error)
}
