package blobstore

import (
	"context"
	"strconv"
	"sync"
)

// MemoryStore is an in-process Store for tests and the demo backend.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
	next  int64
}

type memoryBlob struct {
	content []byte
	version string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string]memoryBlob),
	}
}

func memoryKey(userID, name string) string {
	return userID + "/" + name
}

func (s *MemoryStore) Exists(_ context.Context, userID, name string) (bool, error) {
	if err := ValidateKey(userID, name); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[memoryKey(userID, name)]
	return ok, nil
}

func (s *MemoryStore) Read(_ context.Context, userID, name string) (*Blob, error) {
	if err := ValidateKey(userID, name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[memoryKey(userID, name)]
	if !ok {
		return nil, nil
	}
	return &Blob{Content: append([]byte(nil), b.content...), Version: b.version}, nil
}

func (s *MemoryStore) Write(_ context.Context, userID, name string, content []byte, expectedVersion string) (string, error) {
	if err := ValidateKey(userID, name); err != nil {
		return "", err
	}
	key := memoryKey(userID, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if expectedVersion != "" {
		current, ok := s.blobs[key]
		if !ok || current.version != expectedVersion {
			return "", &ConflictError{Path: key, ExpectedVersion: expectedVersion}
		}
	}
	s.next++
	version := "m" + strconv.FormatInt(s.next, 10)
	s.blobs[key] = memoryBlob{content: append([]byte(nil), content...), version: version}
	return version, nil
}

func (s *MemoryStore) Create(ctx context.Context, userID, name string, content []byte) (string, error) {
	return s.Write(ctx, userID, name, content, "")
}
