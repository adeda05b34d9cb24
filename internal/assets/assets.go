// Package assets loads COLLADA models from disk or the built-in sample.
package assets

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SampleName is the cache key of the built-in model.
const SampleName = "sample_arm.dae"

//go:embed models/sample_arm.dae
var sampleArm []byte

// Sample returns the built-in six-link arm document.
func Sample() []byte {
	return sampleArm
}

// Manager handles model loading with an in-memory cache.
type Manager struct {
	cache *Cache
	read  func(string) ([]byte, error)
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
		read:  os.ReadFile,
	}
}

// Load returns the bytes of a model file. An empty path returns the built-in
// sample. Reads are cached until Invalidate.
func (m *Manager) Load(path string) ([]byte, error) {
	key := SampleName
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		key = abs
	}

	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	data := sampleArm
	if path != "" {
		var err error
		if data, err = m.read(key); err != nil {
			return nil, fmt.Errorf("reading model: %w", err)
		}
	}
	m.cache.Set(key, data)
	return data, nil
}

// Invalidate drops a cached file so the next Load reads it again.
func (m *Manager) Invalidate(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		m.cache.Delete(abs)
	}
}

// Stats returns cache hits and misses.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close clears the cache.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets. Safe for concurrent
// use; the watcher goroutine invalidates while the render loop loads.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}
