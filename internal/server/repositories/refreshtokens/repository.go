// Package refreshtokens declares the repository contract for refresh tokens
// issued at login and its SQL implementation.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for accountID expiring at now+validity.
	Create(ctx context.Context, accountID int64, token string, validity time.Duration) error

	// Find returns the token row, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. A missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteOwned removes a token only when it was issued to accountID and
	// reports whether one was removed.
	DeleteOwned(ctx context.Context, accountID int64, token string) (bool, error)

	// DeleteByAccount removes every token issued to accountID.
	DeleteByAccount(ctx context.Context, accountID int64) error
}
