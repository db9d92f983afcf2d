package services

import (
	"errors"
	"fmt"
	"sync"

	"drover/internal/api"
	"drover/pkg/logging"
)

// ErrInjectedFault is returned by directory operations configured to fail.
var ErrInjectedFault = errors.New("injected fault")

// entry is the directory's record of one service.
type entry struct {
	info       api.ServiceInfo
	registered bool
	config     api.ServiceConfig
}

// Directory is an in-memory service directory. It implements api.Registrar
// and api.ServiceLister and stands in for a real discovery backend: the
// orchestrator's register and unregister calls only change its records.
// Faults can be injected per service and operation to rehearse failures.
type Directory struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	faults  map[string]map[string]error
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		entries: make(map[string]*entry),
		faults: map[string]map[string]error{
			api.OpRegister:   {},
			api.OpUnregister: {},
		},
	}
}

// Add records a registered service running under cfg. Adding a known service
// replaces its record.
func (d *Directory) Add(info api.ServiceInfo, cfg api.ServiceConfig) error {
	if info.Name == "" {
		return fmt.Errorf("service has empty name")
	}
	info.Status = NormalizeStatus(info.Status)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.entries[info.Name]; !exists {
		d.order = append(d.order, info.Name)
	}
	d.entries[info.Name] = &entry{
		info:       info,
		registered: true,
		config:     cfg.Clone(),
	}
	return nil
}

// Seed adds every service listed by lister, registered under cfg.
func (d *Directory) Seed(lister api.ServiceLister, cfg api.ServiceConfig) error {
	for _, name := range lister.ServiceNames() {
		info, ok := lister.ServiceInfo(name)
		if !ok {
			info = api.ServiceInfo{Name: name}
		}
		if err := d.Add(info, cfg); err != nil {
			return fmt.Errorf("failed to seed directory: %w", err)
		}
	}
	logging.Debug("Directory", "Seeded %d services", len(d.ServiceNames()))
	return nil
}

// InjectFault makes every subsequent op on name fail with err. A nil err
// clears the fault.
func (d *Directory) InjectFault(op, name string, err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	faults, ok := d.faults[op]
	if !ok {
		return api.NewValidationError("op", "unknown directory operation %q", op)
	}
	if err == nil {
		delete(faults, name)
		return nil
	}
	faults[name] = err
	return nil
}

// ServiceNames returns the known services in insertion order.
func (d *Directory) ServiceNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

// ServiceInfo returns the metadata of name.
func (d *Directory) ServiceInfo(name string) (api.ServiceInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[name]
	if !ok {
		return api.ServiceInfo{}, false
	}
	return e.info, true
}

// Config returns the configuration name is registered under.
func (d *Directory) Config(name string) (api.ServiceConfig, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[name]
	if !ok || !e.registered {
		return api.ServiceConfig{}, false
	}
	return e.config.Clone(), true
}

// IsRegistered reports whether name is currently registered.
func (d *Directory) IsRegistered(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[name]
	return ok && e.registered
}

// Unregister removes name from service discovery. Unknown services are
// reported as api.NotFoundError; unregistering twice is not an error.
func (d *Directory) Unregister(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[name]
	if !ok {
		return api.NewServiceNotFoundError(name)
	}
	if err := d.faults[api.OpUnregister][name]; err != nil {
		logging.Debug("Directory", "Injected unregister fault for %s", name)
		return err
	}

	e.registered = false
	logging.Debug("Directory", "Unregistered %s", name)
	return nil
}

// RegisterUnderConfig registers every service in names under cfg. It stops
// at the first failure; services before it stay registered.
func (d *Directory) RegisterUnderConfig(names []string, cfg api.ServiceConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, name := range names {
		e, ok := d.entries[name]
		if !ok {
			return api.NewServiceNotFoundError(name)
		}
		if err := d.faults[api.OpRegister][name]; err != nil {
			logging.Debug("Directory", "Injected register fault for %s", name)
			return err
		}

		e.registered = true
		e.config = cfg.Clone()
		logging.Debug("Directory", "Registered %s under app %q", name, cfg.AppID)
	}
	return nil
}
