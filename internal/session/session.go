// Package session holds one user's data in memory together with the version
// token of every blob it came from, and moves it to and from a blob store.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/blobstore"
	"github.com/tahcohcat/liferpg-web/internal/logger"
	"github.com/tahcohcat/liferpg-web/internal/models"
)

// Session is the explicit aggregate of a user's blobs. Methods that touch
// Data or the versions must be called with the session locked.
type Session struct {
	UserID string
	Data   *models.UserData

	store    blobstore.Store
	defaults models.Defaults
	versions map[string]string
	mu       sync.Mutex
	log      *logger.Log
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Version returns the token retained for name, "" when the blob has not
// been read or written yet.
func (s *Session) Version(name string) string {
	return s.versions[name]
}

// Provision creates every blob that is missing from userID's namespace with
// its default content. Each blob is checked on its own, so a partially
// provisioned namespace is completed without touching what is already
// there. It returns the names it created.
func Provision(ctx context.Context, store blobstore.Store, userID string, defaults models.Defaults) ([]string, error) {
	seed := models.NewUserData(defaults)
	created := []string{}
	for _, name := range models.BlobNames {
		ok, err := store.Exists(ctx, userID, name)
		if err != nil {
			return created, fmt.Errorf("provision %s: %w", name, err)
		}
		if ok {
			continue
		}
		content, err := Encode(seed, name)
		if err != nil {
			return created, err
		}
		if _, err := store.Create(ctx, userID, name, content); err != nil {
			return created, fmt.Errorf("provision %s: %w", name, err)
		}
		created = append(created, name)
	}
	if len(created) > 0 {
		logger.New().ForUser(userID).Infof("Provisioned %d blob(s): %v", len(created), created)
	}
	return created, nil
}

// Load reads every blob of userID. Absent blobs keep their seeded default
// and get no version, so the first save creates them.
func Load(ctx context.Context, store blobstore.Store, userID string, defaults models.Defaults) (*Session, error) {
	s := &Session{
		UserID:   userID,
		store:    store,
		defaults: defaults,
		log:      logger.New().ForUser(userID),
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces Data and every version token with what the store holds
// now. Unsaved changes are dropped.
func (s *Session) Reload(ctx context.Context) error {
	return s.reload(ctx)
}

func (s *Session) reload(ctx context.Context) error {
	data := models.NewUserData(s.defaults)
	versions := make(map[string]string, len(models.BlobNames))
	for _, name := range models.BlobNames {
		blob, err := s.store.Read(ctx, s.UserID, name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		if blob == nil {
			s.log.Debugf("Blob %s absent, using defaults", name)
			continue
		}
		if err := Decode(data, name, blob.Content); err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		versions[name] = blob.Version
	}
	s.Data = data
	s.versions = versions
	return nil
}

// Save writes one blob with the version last seen for it. The retained
// version only moves on success; after a conflict it still names the state
// this session was built from.
func (s *Session) Save(ctx context.Context, name string) error {
	content, err := Encode(s.Data, name)
	if err != nil {
		return err
	}
	version, err := s.store.Write(ctx, s.UserID, name, content, s.versions[name])
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	s.versions[name] = version
	s.log.Debugf("Saved %s at %s", name, version)
	return nil
}

// SaveMany saves names in order and stops at the first failure. Blobs
// written before the failure stay written.
func (s *Session) SaveMany(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := s.Save(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// SaveAll saves every blob. There is no cross-blob atomicity.
func (s *Session) SaveAll(ctx context.Context) error {
	return s.SaveMany(ctx, models.BlobNames...)
}

// Export builds the consolidated one-way download.
func (s *Session) Export(now time.Time) models.Export {
	return models.Export{
		FormatVersion: models.ExportFormatVersion,
		ExportedAt:    now,
		UserID:        s.UserID,
		UserData:      *s.Data,
	}
}
