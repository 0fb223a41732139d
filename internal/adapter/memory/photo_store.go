package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
)

// PhotoStore keeps uploaded photos in memory, keyed by content hash. It is
// meant for local runs and tests.
type PhotoStore struct {
	mu     sync.RWMutex
	photos map[string][]byte
}

func NewPhotoStore() *PhotoStore {
	return &PhotoStore{photos: make(map[string][]byte)}
}

// Put stores data and returns "sha256:<hex>".
func (s *PhotoStore) Put(_ context.Context, data []byte, _ string) (string, error) {
	sum := sha256.Sum256(data)
	ref := "sha256:" + hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photos[ref]; !ok {
		s.photos[ref] = append([]byte(nil), data...)
	}
	return ref, nil
}

// Get returns a copy of the photo stored under ref.
func (s *PhotoStore) Get(_ context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "sha256:") {
		return nil, fmt.Errorf("invalid photo reference: %s", ref)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.photos[ref]
	if !ok {
		return nil, fmt.Errorf("photo %s not found", ref)
	}
	return append([]byte(nil), data...), nil
}
