package blobstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/database"
)

// SQLiteStore keeps blobs in a local table. The version token is an integer
// counter rendered as a string.
type SQLiteStore struct {
	db *database.DB
}

func NewSQLiteStore(db *database.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type blobRow struct {
	Content []byte `db:"content"`
	Version int64  `db:"version"`
}

func (s *SQLiteStore) Exists(ctx context.Context, userID, name string) (bool, error) {
	if err := ValidateKey(userID, name); err != nil {
		return false, err
	}
	var count int
	query := `SELECT COUNT(*) FROM blobs WHERE user_id = ? AND name = ?`
	if err := s.db.GetContext(ctx, &count, query, userID, name); err != nil {
		return false, &StoreError{Op: "exists", Path: userID + "/" + name, Err: err}
	}
	return count > 0, nil
}

func (s *SQLiteStore) Read(ctx context.Context, userID, name string) (*Blob, error) {
	if err := ValidateKey(userID, name); err != nil {
		return nil, err
	}
	var row blobRow
	query := `SELECT content, version FROM blobs WHERE user_id = ? AND name = ?`
	err := s.db.GetContext(ctx, &row, query, userID, name)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, &StoreError{Op: "read", Path: userID + "/" + name, Err: err}
	}
	return &Blob{Content: row.Content, Version: strconv.FormatInt(row.Version, 10)}, nil
}

func (s *SQLiteStore) Write(ctx context.Context, userID, name string, content []byte, expectedVersion string) (string, error) {
	if err := ValidateKey(userID, name); err != nil {
		return "", err
	}
	p := userID + "/" + name
	content = nonNilContent(content)

	if expectedVersion == "" {
		return s.upsert(ctx, userID, name, content)
	}

	expected, err := strconv.ParseInt(expectedVersion, 10, 64)
	if err != nil {
		// a token this backend never issued cannot match
		return "", &ConflictError{Path: p, ExpectedVersion: expectedVersion}
	}

	query := `UPDATE blobs SET content = ?, version = version + 1, updated_at = ?
		WHERE user_id = ? AND name = ? AND version = ?`
	result, err := s.db.ExecContext(ctx, query, content, time.Now(), userID, name, expected)
	if err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: err}
	}
	if affected == 0 {
		return "", &ConflictError{Path: p, ExpectedVersion: expectedVersion}
	}
	return strconv.FormatInt(expected+1, 10), nil
}

func (s *SQLiteStore) Create(ctx context.Context, userID, name string, content []byte) (string, error) {
	if err := ValidateKey(userID, name); err != nil {
		return "", err
	}
	return s.upsert(ctx, userID, name, nonNilContent(content))
}

// nonNilContent keeps an empty blob from binding as NULL.
func nonNilContent(content []byte) []byte {
	if content == nil {
		return []byte{}
	}
	return content
}

func (s *SQLiteStore) upsert(ctx context.Context, userID, name string, content []byte) (string, error) {
	p := userID + "/" + name
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer tx.Rollback()

	query := `
		INSERT INTO blobs (user_id, name, content, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(user_id, name) DO UPDATE SET
			content = excluded.content,
			version = blobs.version + 1,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, userID, name, content, time.Now()); err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: err}
	}

	var version int64
	if err := tx.GetContext(ctx, &version, `SELECT version FROM blobs WHERE user_id = ? AND name = ?`, userID, name); err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return "", &StoreError{Op: "write", Path: p, Err: fmt.Errorf("commit tx: %w", err)}
	}
	return strconv.FormatInt(version, 10), nil
}
