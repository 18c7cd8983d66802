package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/models"
)

// SQLRepository implements file storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO files (account_id, filename, payload)
		 VALUES (?, ?, ?)
		 RETURNING id, uploaded_at`

	err := r.db.QueryRowContext(ctx, query, file.AccountID, file.FileName, file.Payload).
		Scan(&file.ID, dbx.ScanTime(&file.UploadedAt))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrNameCollision
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query :=
		`SELECT id, account_id, filename, uploaded_at FROM files
		 WHERE id = ?`

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&f.ID, &f.AccountID, &f.FileName, dbx.ScanTime(&f.UploadedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *SQLRepository) NameTaken(ctx context.Context, accountID int64, name string, excludeID int64) (bool, error) {
	query :=
		`SELECT COUNT(*) FROM files
		 WHERE account_id = ? AND filename = ? AND id <> ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, accountID, name, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) Rename(ctx context.Context, id, accountID int64, name string) (bool, error) {
	query := `UPDATE files SET filename = ? WHERE id = ? AND account_id = ?`

	res, err := r.db.ExecContext(ctx, query, name, id, accountID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return false, common.ErrNameCollision
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.File, error) {
	query :=
		`SELECT id, account_id, filename, uploaded_at FROM files
		 WHERE account_id = ?
		 ORDER BY uploaded_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0)
	for rows.Next() {
		var item models.File
		if err := rows.Scan(&item.ID, &item.AccountID, &item.FileName, dbx.ScanTime(&item.UploadedAt)); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) ListSharedWith(ctx context.Context, accountID int64) ([]*models.SharedFile, error) {
	query :=
		`SELECT f.id, f.filename, f.uploaded_at, a.username, g.granted_at
		 FROM file_grants g
		 JOIN files f ON f.id = g.file_id
		 JOIN accounts a ON a.id = f.account_id
		 WHERE g.target_account_id = ?
		 ORDER BY g.granted_at DESC, g.id DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shared files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.SharedFile, 0)
	for rows.Next() {
		var item models.SharedFile
		if err := rows.Scan(&item.FileID, &item.FileName, dbx.ScanTime(&item.UploadedAt),
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

func (r *SQLRepository) GetOwnedPayload(ctx context.Context, id, accountID int64) ([]byte, error) {
	query := `SELECT payload FROM files WHERE id = ? AND account_id = ?`

	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, id, accountID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payload, nil
}

func (r *SQLRepository) GetReadable(ctx context.Context, id, accountID int64) (*models.File, error) {
	query :=
		`SELECT f.id, f.account_id, f.filename, f.payload, f.uploaded_at FROM files f
		 WHERE f.id = ?
		   AND (f.account_id = ?
		        OR EXISTS (SELECT 1 FROM file_grants g
		                   WHERE g.file_id = f.id AND g.target_account_id = ?))`

	f := &models.File{}
	err := r.db.QueryRowContext(ctx, query, id, accountID, accountID).
		Scan(&f.ID, &f.AccountID, &f.FileName, &f.Payload, dbx.ScanTime(&f.UploadedAt))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id, accountID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = ? AND account_id = ?`, id, accountID)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE account_id = ?`, accountID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
