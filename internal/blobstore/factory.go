package blobstore

import (
	"fmt"
	"io"

	"github.com/tahcohcat/liferpg-web/config"
	"github.com/tahcohcat/liferpg-web/internal/database"
)

type Backend string

const (
	BackendGitHub Backend = "github"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the configured backend. The returned Closer releases whatever
// the backend holds open.
func New(cfg *config.StoreConfig) (Store, io.Closer, error) {
	switch Backend(cfg.Backend) {
	case BackendGitHub:
		s, err := NewGitHubStore(&cfg.GitHub)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case BackendSQLite:
		db, err := database.NewDB(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStore(db), db, nil
	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}
