// Package backend implements the drivers for each external connectivity subsystem.
// Each driver (tailscale, NetworkManager, iwd, bluetoothctl, rfkill) lists its options
// and applies a chosen one by shelling out to the tool that owns the state.
package backend

import (
	"github.com/eliteGoblin/netmenu/internal/domain"
)

// Registry holds the backend drivers in registration order.
// The order is the group order of backend actions in the menu.
type Registry struct {
	order    []string
	backends map[string]domain.Backend
}

// NewRegistry creates a registry with the given drivers.
func NewRegistry(backends ...domain.Backend) *Registry {
	r := &Registry{
		backends: make(map[string]domain.Backend),
	}
	for _, b := range backends {
		r.Register(b)
	}
	return r
}

// Register adds a driver. Registering an id twice replaces the driver but keeps its
// original position.
func (r *Registry) Register(b domain.Backend) {
	if b == nil {
		return
	}
	if _, exists := r.backends[b.ID()]; !exists {
		r.order = append(r.order, b.ID())
	}
	r.backends[b.ID()] = b
}

// Get returns a driver by id.
func (r *Registry) Get(id string) (domain.Backend, bool) {
	b, ok := r.backends[id]
	return b, ok
}

// GetAll returns all drivers in registration order.
func (r *Registry) GetAll() []domain.Backend {
	result := make([]domain.Backend, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.backends[id])
	}
	return result
}

// List returns all driver ids in registration order.
func (r *Registry) List() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
