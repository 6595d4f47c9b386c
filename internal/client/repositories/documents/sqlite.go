package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Get(ctx context.Context, cid string) ([]byte, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE cid = ?`, cid).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", cid, err)
	}
	return body, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, cid string, body []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (cid, body, fetched_at) VALUES (?, ?, ?) ON CONFLICT(cid) DO NOTHING`,
		cid, body, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to put document %s: %w", cid, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, cid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE cid = ?`, cid)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", cid, err)
	}
	return nil
}
