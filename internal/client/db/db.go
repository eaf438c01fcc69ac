// Package db opens the client's local history database and applies its
// migrations.
package db

import (
	"context"
	"database/sql"
	"log"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/guardianbox/internal/client/migrations"
	"github.com/dmitrijs2005/guardianbox/internal/client/repositories/history"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	History history.Repository
	DB      *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	// Set the database dialect
	if err := goose.SetDialect("sqlite3"); err != nil {
		log.Fatal("failed to set goose dialect:", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; a second pooled connection would also
	// see a different database entirely for :memory: DSNs
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	repos := &Repositories{
		History: history.NewSQLiteRepository(db),
		DB:      db,
	}
	return repos, nil
}
