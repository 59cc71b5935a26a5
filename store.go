package pushbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// tokenStoreKey is the fixed key the coordinator uses for its token record.
const tokenStoreKey = "push_token"

// StoredToken is the persisted token record shape.
type StoredToken struct {
	Token string `json:"token"`
}

// TokenStore persists a single push-token record in durable key-value
// storage. Get returns (nil, nil) when no record exists under key.
type TokenStore interface {
	Get(ctx context.Context, key string) (*StoredToken, error)
	Set(ctx context.Context, key string, rec StoredToken) error
	Delete(ctx context.Context, key string) error
}

// FileStore persists records as JSON files in a session directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the record under key, or (nil, nil) when absent.
func (s *FileStore) Get(_ context.Context, key string) (*StoredToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token record: %w", err)
	}

	var rec StoredToken
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing token record: %w", err)
	}
	return &rec, nil
}

// Set writes the record under key, creating the session directory if needed.
func (s *FileStore) Set(_ context.Context, key string, rec StoredToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing token record: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0o600); err != nil {
		return fmt.Errorf("writing token record: %w", err)
	}
	return nil
}

// Delete removes the record under key. Deleting an absent record is not an
// error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token record: %w", err)
	}
	return nil
}
