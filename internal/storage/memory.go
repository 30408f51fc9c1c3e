package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory ObjectStore used by tests and dry runs.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[Role]map[string][]byte

	// Optional fault injection, keyed by role/key.
	DownloadErr map[string]error
	UploadErr   map[string]error
	ListErr     error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:     make(map[Role]map[string][]byte),
		DownloadErr: make(map[string]error),
		UploadErr:   make(map[string]error),
	}
}

func faultKey(role Role, key string) string {
	return string(role) + "/" + key
}

// Put seeds an object directly.
func (s *MemoryStore) Put(role Role, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects[role] == nil {
		s.objects[role] = make(map[string][]byte)
	}
	s.objects[role][key] = append([]byte(nil), data...)
}

// Get returns a stored object and whether it exists.
func (s *MemoryStore) Get(role Role, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[role][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Keys returns the sorted keys stored under a role.
func (s *MemoryStore) Keys(role Role) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects[role]))
	for key := range s.objects[role] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// List returns the objects under prefix within the role.
func (s *MemoryStore) List(_ context.Context, role Role, prefix string) ([]Object, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var objects []Object
	for key, data := range s.objects[role] {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, Object{Role: role, Key: key, Size: int64(len(data))})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// Download writes a stored object to localPath.
func (s *MemoryStore) Download(_ context.Context, role Role, key, localPath string) error {
	if err := s.DownloadErr[faultKey(role, key)]; err != nil {
		return err
	}
	data, ok := s.Get(role, key)
	if !ok {
		return fmt.Errorf("object %s/%s not found", role, key)
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(localPath, data, 0o644)
}

// Upload stores localPath under key within the role.
func (s *MemoryStore) Upload(_ context.Context, role Role, key, localPath string) error {
	if err := s.UploadErr[faultKey(role, key)]; err != nil {
		return err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	s.Put(role, key, data)
	return nil
}

var _ ObjectStore = (*MemoryStore)(nil)
