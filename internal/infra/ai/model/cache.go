package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	domai "github.com/bryanwahyu/legalmind/internal/domain/ai"
)

const manifestName = "models.yaml"

// Cache keeps resolved model metadata on disk so a restart does not query the backend again.
// Entries are keyed by the configured candidate name, not the canonical id the backend reports,
// so an aliased model (t5-small resolving to google-t5/t5-small) still hits.
// A Cache with an empty dir is disabled.
type Cache struct {
	dir string
	mu  sync.Mutex
}

type manifest struct {
	Models map[string]domai.ModelInfo `yaml:"models"`
}

func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

func cacheKey(backend, name string) string { return backend + "/" + name }

// Lookup returns the cached info for backend/name, if any.
func (c *Cache) Lookup(backend, name string) (*domai.ModelInfo, bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.read()
	if err != nil {
		return nil, false
	}
	info, ok := m.Models[cacheKey(backend, name)]
	if !ok {
		return nil, false
	}
	return &info, true
}

// Store records info under backend/name in the manifest.
func (c *Cache) Store(backend, name string, info *domai.ModelInfo) error {
	if c == nil || c.dir == "" || info == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create model cache dir: %w", err)
	}
	m, err := c.read()
	if err != nil {
		// a corrupt manifest is rebuilt from scratch
		m = &manifest{}
	}
	if m.Models == nil {
		m.Models = make(map[string]domai.ModelInfo)
	}
	m.Models[cacheKey(backend, name)] = *info

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model cache: %w", err)
	}
	tmp := filepath.Join(c.dir, manifestName+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write model cache: %w", err)
	}
	return os.Rename(tmp, filepath.Join(c.dir, manifestName))
}

func (c *Cache) read() (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, manifestName))
	if errors.Is(err, os.ErrNotExist) {
		return &manifest{}, nil
	}
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
