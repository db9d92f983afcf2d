package catalog

import (
	"sync"

	"drover/internal/api"
	"drover/pkg/logging"
)

// snapshot is an immutable, pre-resolved view of a catalog.
type snapshot struct {
	catalog *Catalog
	names   []string
	info    map[string]api.ServiceInfo
	deps    map[string][]string
}

func newSnapshot(cat *Catalog) *snapshot {
	s := &snapshot{
		catalog: cat,
		names:   cat.ServiceNames(),
		info:    make(map[string]api.ServiceInfo, len(cat.Services)),
		deps:    make(map[string][]string, len(cat.Services)),
	}
	for _, entry := range cat.Services {
		status := entry.Status
		if status == "" {
			status = api.StatusActive
		}
		s.info[entry.Name] = api.ServiceInfo{Name: entry.Name, Status: status}
		s.deps[entry.Name] = inferDependencies(entry, cat.Rules)
	}
	return s
}

// Store serves a catalog to the dependency analyzer. It implements both
// dependency.Provider and api.ServiceLister. Replace swaps the whole
// snapshot, so readers never observe a half-applied reload.
type Store struct {
	mu   sync.RWMutex
	snap *snapshot
}

// NewStore creates a store serving cat. A nil catalog yields an empty store.
func NewStore(cat *Catalog) *Store {
	if cat == nil {
		cat = &Catalog{}
	}
	return &Store{snap: newSnapshot(cat)}
}

// Replace atomically swaps in a new catalog.
func (s *Store) Replace(cat *Catalog) {
	next := newSnapshot(cat)

	s.mu.Lock()
	s.snap = next
	s.mu.Unlock()

	logging.Debug("Catalog", "Loaded catalog with %d services and %d rules", len(next.names), len(cat.Rules))
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Catalog returns the catalog currently served.
func (s *Store) Catalog() *Catalog {
	return s.current().catalog
}

// ServiceNames returns the known services in catalog order.
func (s *Store) ServiceNames() []string {
	return append([]string(nil), s.current().names...)
}

// ServiceInfo returns the metadata of name. Services without a declared
// status are active.
func (s *Store) ServiceInfo(name string) (api.ServiceInfo, bool) {
	info, ok := s.current().info[name]
	return info, ok
}

// DependenciesOf returns the inferred dependencies of name, or nil for an
// unknown service.
func (s *Store) DependenciesOf(name string) []string {
	deps, ok := s.current().deps[name]
	if !ok {
		return nil
	}
	return append([]string(nil), deps...)
}

// SourceConfig returns the configuration the catalog's services currently
// run under.
func (s *Store) SourceConfig() api.ServiceConfig {
	return s.current().catalog.Config.Clone()
}
