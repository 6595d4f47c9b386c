package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/dediary/internal/client/migrations"
	"github.com/dmitrijs2005/dediary/internal/client/repositories/documents"
	"github.com/dmitrijs2005/dediary/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/dediary/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories groups the local stores opened on one database.
type Repositories struct {
	Metadata  *metadata.SQLiteRepository
	Documents *documents.SQLiteRepository
}

// NewRepositories binds the repositories to db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata:  metadata.NewSQLiteRepository(db),
		Documents: documents.NewSQLiteRepository(db),
	}
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	_, err = provider.Up(ctx)
	return err
}

// InitDatabase opens (creating if needed) the SQLite file at dsn and brings
// its schema up to date.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer keeps SQLITE_BUSY out of concurrent cache write-backs
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
