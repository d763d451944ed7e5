// Package extension hosts editor features that react to document
// events through the bus and act on the editor through the Host
// interface. Shipped features are the line count status display and
// the trigger expander.
package extension

import (
	"fmt"
	"sync"

	"github.com/snipline/snipline/internal/event"
	"github.com/snipline/snipline/internal/log"
)

// Feature is an editor capability with an activation lifecycle.
// Activate wires the feature to the bus and host through the given
// context; Deactivate must undo everything Activate did.
type Feature interface {
	Name() string
	Activate(ctx *Context) error
	Deactivate() error
}

// Manager owns feature registration and lifecycle. Each feature gets
// its own context so deactivating one cannot disturb another.
type Manager struct {
	host   Host
	bus    *event.Bus
	logger *log.Logger

	mu       sync.Mutex
	features []Feature
	active   map[string]bool
}

// NewManager creates a feature manager.
func NewManager(host Host, bus *event.Bus, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Null
	}
	return &Manager{
		host:   host,
		bus:    bus,
		logger: logger,
		active: make(map[string]bool),
	}
}

// Register adds a feature. Registration does not activate it.
func (m *Manager) Register(f Feature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.features = append(m.features, f)
}

// ActivateAll activates registered features in registration order.
// The first failure stops activation and is returned.
func (m *Manager) ActivateAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range m.features {
		if m.active[f.Name()] {
			continue
		}

		ctx := NewContext(m.host, m.bus, m.logger.WithComponent(f.Name()))
		if err := f.Activate(ctx); err != nil {
			ctx.Dispose()
			return fmt.Errorf("activate %s: %w", f.Name(), err)
		}

		m.active[f.Name()] = true
		m.logger.Debug("activated feature %s", f.Name())
	}
	return nil
}

// DeactivateAll deactivates features in reverse registration order.
// All features are deactivated even when some fail; the first error is
// returned.
func (m *Manager) DeactivateAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for i := len(m.features) - 1; i >= 0; i-- {
		f := m.features[i]
		if !m.active[f.Name()] {
			continue
		}

		if err := f.Deactivate(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("deactivate %s: %w", f.Name(), err)
		}
		m.active[f.Name()] = false
	}
	return firstErr
}
