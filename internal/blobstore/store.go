// Package blobstore reads and writes named blobs in a per-user namespace on a
// store that tags every object with an opaque version token. Writes carry
// the last token the caller saw, and the store rejects them when the object
// has moved on since.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Blob is the content of one named object plus its version token.
type Blob struct {
	Content []byte
	Version string
}

// Store is implemented by every backend.
type Store interface {
	// Exists reports whether userID/name resolves to an object.
	Exists(ctx context.Context, userID, name string) (bool, error)

	// Read returns nil, nil when the blob is absent.
	Read(ctx context.Context, userID, name string) (*Blob, error)

	// Write stores content and returns the new version. A non-empty
	// expectedVersion must match the stored version or a *ConflictError is
	// returned. An empty one writes unconditionally, except on GitHub, which
	// refuses to overwrite an existing file without its sha (also a conflict).
	Write(ctx context.Context, userID, name string, content []byte, expectedVersion string) (string, error)

	// Create writes without an expected version. Callers check Exists first.
	Create(ctx context.Context, userID, name string, content []byte) (string, error)
}

// ConflictError means the stored version no longer matches the one supplied.
type ConflictError struct {
	Path            string
	ExpectedVersion string
}

func (e *ConflictError) Error() string {
	if e.ExpectedVersion == "" {
		return fmt.Sprintf("conflict writing %s: object already exists", e.Path)
	}
	return fmt.Sprintf("conflict writing %s: version %s is stale", e.Path, shortVersion(e.ExpectedVersion))
}

// StoreError covers transport, auth, rate limiting and unexpected responses.
type StoreError struct {
	Op         string
	Path       string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *StoreError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsConflict reports whether err is or wraps a *ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsStoreError reports whether err is or wraps a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// BlobPath joins root, userID and name into <root>/<userID>/<name>.
func BlobPath(root, userID, name string) string {
	return path.Join(strings.Trim(root, "/"), userID, name)
}

// ValidateKey rejects user ids and blob names that would escape the namespace.
func ValidateKey(userID, name string) error {
	for _, part := range []string{userID, name} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, "/\\") {
			return fmt.Errorf("invalid blob key %q/%q", userID, name)
		}
	}
	return nil
}

func shortVersion(v string) string {
	if len(v) > 8 {
		return v[:8]
	}
	return v
}
