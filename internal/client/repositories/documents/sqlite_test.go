package documents

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE documents (
  cid        TEXT PRIMARY KEY,
  body       BLOB NOT NULL,
  fetched_at DATETIME NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestPutAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "bafy1", []byte(`{"title":"a"}`)))

	b, err := r.Get(ctx, "bafy1")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"a"}`, string(b))
}

func TestPut_FirstBodyWins(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "bafy1", []byte("first")))
	require.NoError(t, r.Put(ctx, "bafy1", []byte("second")))

	b, err := r.Get(ctx, "bafy1")
	require.NoError(t, err)
	assert.Equal(t, "first", string(b))
}

func TestGet_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, "x", []byte("1")))
	require.NoError(t, r.Delete(ctx, "x"))
	require.NoError(t, r.Delete(ctx, "x"))

	_, err := r.Get(ctx, "x")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestErrorsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT body FROM documents`).WillReturnError(errors.New("io"))
	_, err = r.Get(ctx, "a")
	require.ErrorContains(t, err, "failed to get document a")

	mock.ExpectExec(`INSERT INTO documents`).WillReturnError(errors.New("io"))
	require.ErrorContains(t, r.Put(ctx, "a", []byte("x")), "failed to put document a")

	mock.ExpectExec(`DELETE FROM documents WHERE cid`).WillReturnError(errors.New("io"))
	require.ErrorContains(t, r.Delete(ctx, "a"), "failed to delete document a")

	require.NoError(t, mock.ExpectationsWereMet())
}
