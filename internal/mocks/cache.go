package mocks

import (
	"errors"
	"sync"
	"time"
)

var ErrCacheMiss = errors.New("mock cache: key not found")

// MockCache is an in-memory stand-in for the redis cache. TTLs are
// recorded but not enforced; tests drive expiry through the clock they
// inject into the service under test.
type MockCache struct {
	mu     sync.Mutex
	values map[string]string
	TTLs   map[string]time.Duration
}

func NewMockCache() *MockCache {
	return &MockCache{
		values: make(map[string]string),
		TTLs:   make(map[string]time.Duration),
	}
}

func (m *MockCache) Set(key, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.TTLs[key] = expiration
	return nil
}

func (m *MockCache) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return value, nil
}

func (m *MockCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	delete(m.TTLs, key)
	return nil
}
