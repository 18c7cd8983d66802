// Package grants stores read-only share grants for both artifact kinds.
// Notes and files keep their grants in separate relations; every method
// takes the kind to pick the relation.
package grants

import (
	"context"

	"github.com/dmitrijs2005/minibi/internal/server/models"
)

type Repository interface {
	// Create inserts a grant. An existing (artifact, target) pair yields
	// common.ErrAlreadyShared.
	Create(ctx context.Context, kind models.ArtifactKind, artifactID, targetID int64) error
	Exists(ctx context.Context, kind models.ArtifactKind, artifactID, targetID int64) (bool, error)
	Delete(ctx context.Context, kind models.ArtifactKind, artifactID, targetID int64) (bool, error)

	// DeleteByArtifact removes every grant on the artifact.
	DeleteByArtifact(ctx context.Context, kind models.ArtifactKind, artifactID int64) (int64, error)

	// ListByArtifact returns the targets of an artifact's grants, oldest first.
	ListByArtifact(ctx context.Context, kind models.ArtifactKind, artifactID int64) ([]*models.Grant, error)

	// DeleteByAccount removes, for both kinds, the grants that target
	// accountID and the grants on artifacts accountID owns.
	DeleteByAccount(ctx context.Context, accountID int64) (int64, error)
}
