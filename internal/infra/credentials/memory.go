package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// MemoryStore holds the key for the life of the process. It backs the
// settings page when no database is configured.
type MemoryStore struct {
	mu  sync.RWMutex
	key string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) OpenAIAPIKey(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key, nil
}

func (m *MemoryStore) SetOpenAIAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("openai api key is required")
	}
	m.mu.Lock()
	m.key = key
	m.mu.Unlock()
	return nil
}

var _ Setter = (*MemoryStore)(nil)
