package blobstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/scampozano/deepurge/internal/common"
	"github.com/scampozano/deepurge/internal/hashx"
)

// MemoryStore is an in-process Store used by tests and demo runs. Ids mix
// a content-derived prefix with a random suffix, mimicking the opaque ids
// a real backend hands out while keeping repeated uploads of the same
// bytes distinct.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(_ context.Context, data []byte) (string, error) {
	suffix, err := common.MakeRandHexString(4)
	if err != nil {
		return "", fmt.Errorf("blob id: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	digest := hashx.Fingerprint(data)
	id := fmt.Sprintf("mem_%s_%s", digest.String()[:32], suffix)

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[id] = stored

	return id, nil
}

func (m *MemoryStore) Download(_ context.Context, objectID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[objectID]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", objectID, common.ErrNotFound)
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Len reports the number of stored blobs.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// Replace overwrites the bytes stored under id. Tests use it to simulate
// tampering at the untrusted store.
func (m *MemoryStore) Replace(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[id] = stored
}
