package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/models"
)

// SQLRepository implements note storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO notes (account_id, content)
		 VALUES (?, ?)
		 RETURNING id, created_at`

	if err := r.db.QueryRowContext(ctx, query, note.AccountID, note.Content).
		Scan(&note.ID, dbx.ScanTime(&note.CreatedAt)); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

func (r *SQLRepository) Update(ctx context.Context, id, accountID int64, content string) (bool, error) {
	query := `UPDATE notes SET content = ? WHERE id = ? AND account_id = ?`

	res, err := r.db.ExecContext(ctx, query, content, id, accountID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	query :=
		`SELECT id, account_id, content, created_at FROM notes
		 WHERE id = ?`

	return scanNote(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLRepository) GetReadable(ctx context.Context, id, accountID int64) (*models.Note, error) {
	query :=
		`SELECT n.id, n.account_id, n.content, n.created_at FROM notes n
		 WHERE n.id = ?
		   AND (n.account_id = ?
		        OR EXISTS (SELECT 1 FROM note_grants g
		                   WHERE g.note_id = n.id AND g.target_account_id = ?))`

	return scanNote(r.db.QueryRowContext(ctx, query, id, accountID, accountID))
}

func scanNote(row *sql.Row) (*models.Note, error) {
	n := &models.Note{}
	if err := row.Scan(&n.ID, &n.AccountID, &n.Content, dbx.ScanTime(&n.CreatedAt)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Note, error) {
	query :=
		`SELECT id, account_id, content, created_at FROM notes
		 WHERE account_id = ?
		 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Note, 0)
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.AccountID, &item.Content, dbx.ScanTime(&item.CreatedAt)); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) ListSharedWith(ctx context.Context, accountID int64) ([]*models.SharedNote, error) {
	query :=
		`SELECT n.id, n.content, n.created_at, a.username, g.granted_at
		 FROM note_grants g
		 JOIN notes n ON n.id = g.note_id
		 JOIN accounts a ON a.id = n.account_id
		 WHERE g.target_account_id = ?
		 ORDER BY n.created_at DESC, n.id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shared notes: %w", err)
	}
	defer rows.Close()

	result := make([]*models.SharedNote, 0)
	for rows.Next() {
		var item models.SharedNote
		if err := rows.Scan(&item.NoteID, &item.Content, dbx.ScanTime(&item.CreatedAt),
			&item.OwnerUserName, dbx.ScanTime(&item.GrantedAt)); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id, accountID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) DeleteByAccount(ctx context.Context, accountID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
