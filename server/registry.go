package server

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/coax-ai/coax/grammar"
	"github.com/coax-ai/coax/grammar/funcschema"
)

// Registry holds named, preloaded function catalogs so generate requests can
// reference a catalog instead of shipping the manifest inline. Iteration
// order is registration order.
type Registry struct {
	mu       sync.RWMutex
	catalogs *linkedhashmap.Map
}

func NewRegistry() *Registry {
	return &Registry{catalogs: linkedhashmap.New()}
}

// Register adds a catalog under name. Re-registering a name is an error;
// catalogs are static configuration, not mutable state.
func (r *Registry) Register(name string, catalog *grammar.FunctionCatalog) error {
	if name == "" {
		return fmt.Errorf("catalog name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.catalogs.Get(name); ok {
		return fmt.Errorf("catalog %q already registered", name)
	}
	r.catalogs.Put(name, catalog)
	return nil
}

func (r *Registry) Get(name string) (*grammar.FunctionCatalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.catalogs.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*grammar.FunctionCatalog), true
}

// Names returns the registered catalog names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, r.catalogs.Size())
	for _, k := range r.catalogs.Keys() {
		names = append(names, k.(string))
	}
	return names
}

// LoadDir registers every *.json manifest in dir under its base name. A
// missing directory is not an error; a malformed manifest is.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		catalog, err := funcschema.Load(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if err := r.Register(name, catalog); err != nil {
			return err
		}
		slog.Debug("registered catalog", "name", name, "functions", len(catalog.Functions()))
	}
	return nil
}
