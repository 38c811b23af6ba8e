package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tahcohcat/liferpg-web/internal/logger"
)

type DB struct {
	*sqlx.DB
}

// NewDB opens the SQLite file backing the local blob store and makes sure
// the schema exists.
func NewDB(databaseURL string) (*DB, error) {
	if databaseURL == "" {
		databaseURL = "liferpg.db" // Default SQLite file
	}

	db, err := sqlx.Connect("sqlite3", databaseURL+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection serialises writers, so the version check in
	// UPDATE ... WHERE version = ? cannot interleave.
	db.SetMaxOpenConns(1)

	dbWrapper := &DB{DB: db}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().Debugf("database ready at %s", databaseURL)
	return dbWrapper, nil
}

// createTables creates the necessary database tables
func (db *DB) createTables() error {
	blobsTable := `
	CREATE TABLE IF NOT EXISTS blobs (
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		content BLOB NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, name)
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_blobs_user_id ON blobs(user_id);`,
	}

	if _, err := db.Exec(blobsTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
