package grants

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/models"
)

type relation struct {
	grants   string
	column   string
	artifact string
}

var relations = map[models.ArtifactKind]relation{
	models.KindNote: {grants: "note_grants", column: "note_id", artifact: "notes"},
	models.KindFile: {grants: "file_grants", column: "file_id", artifact: "files"},
}

func relationFor(kind models.ArtifactKind) (relation, error) {
	rel, ok := relations[kind]
	if !ok {
		return relation{}, fmt.Errorf("unknown artifact kind %q", kind)
	}
	return rel, nil
}

// SQLRepository implements grant storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, kind models.ArtifactKind, artifactID, targetID int64) error {
	rel, err := relationFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s, target_account_id) VALUES (?, ?)`, rel.grants, rel.column)

	if _, err := r.db.ExecContext(ctx, query, artifactID, targetID); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyShared
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Exists(ctx context.Context, kind models.ArtifactKind, artifactID, targetID int64) (bool, error) {
	rel, err := relationFor(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ? AND target_account_id = ?`, rel.grants, rel.column)

	var n int
	if err := r.db.QueryRowContext(ctx, query, artifactID, targetID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) Delete(ctx context.Context, kind models.ArtifactKind, artifactID, targetID int64) (bool, error) {
	rel, err := relationFor(kind)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND target_account_id = ?`, rel.grants, rel.column)

	res, err := r.db.ExecContext(ctx, query, artifactID, targetID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) DeleteByArtifact(ctx context.Context, kind models.ArtifactKind, artifactID int64) (int64, error) {
	rel, err := relationFor(kind)
	if err != nil {
		return 0, err
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, rel.grants, rel.column)

	res, err := r.db.ExecContext(ctx, query, artifactID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) ListByArtifact(ctx context.Context, kind models.ArtifactKind, artifactID int64) ([]*models.Grant, error) {
	rel, err := relationFor(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT g.%s, g.target_account_id, a.username, g.granted_at
		 FROM %s g
		 JOIN accounts a ON a.id = g.target_account_id
		 WHERE g.%s = ?
		 ORDER BY g.granted_at, g.id`, rel.column, rel.grants, rel.column)

	rows, err := r.db.QueryContext(ctx, query, artifactID)
	if err != nil {
		return nil, fmt.Errorf("failed to select grants: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Grant, 0)
	for rows.Next() {
		var g models.Grant
		if err := rows.Scan(&g.ArtifactID, &g.TargetID, &g.TargetUserName, dbx.ScanTime(&g.GrantedAt)); err != nil {
			return nil, err
		}
		result = append(result, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) DeleteByAccount(ctx context.Context, accountID int64) (int64, error) {
	var total int64
	for _, kind := range []models.ArtifactKind{models.KindNote, models.KindFile} {
		rel := relations[kind]
		query := fmt.Sprintf(
			`DELETE FROM %s
			 WHERE target_account_id = ?
			    OR %s IN (SELECT id FROM %s WHERE account_id = ?)`, rel.grants, rel.column, rel.artifact)

		res, err := r.db.ExecContext(ctx, query, accountID, accountID)
		if err != nil {
			return total, fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected error: %w", err)
		}
		total += n
	}
	return total, nil
}
