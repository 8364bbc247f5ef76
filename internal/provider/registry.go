// Package provider holds the registry that maps each ProviderID to the
// adapter that talks to it. Adapters live in the subpackages.
package provider

import (
	"fmt"
	"sort"

	"fjacquet/stock-categorizer/internal/categorizer"
	"fjacquet/stock-categorizer/internal/models"
)

// Registry is a closed mapping from provider identity to adapter.
type Registry struct {
	adapters map[models.ProviderID]categorizer.Adapter
}

// NewRegistry registers adapters under their own IDs. Registering two
// adapters for the same provider is an error.
func NewRegistry(adapters ...categorizer.Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[models.ProviderID]categorizer.Adapter, len(adapters))}
	for _, a := range adapters {
		if a == nil {
			continue
		}
		if _, dup := r.adapters[a.ID()]; dup {
			return nil, fmt.Errorf("duplicate adapter for provider %q", a.ID())
		}
		r.adapters[a.ID()] = a
	}
	return r, nil
}

// Adapter implements categorizer.Resolver.
func (r *Registry) Adapter(id models.ProviderID) (categorizer.Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// Missing returns the known providers without a registered adapter.
func (r *Registry) Missing() []models.ProviderID {
	var missing []models.ProviderID
	for _, id := range models.AllProviders() {
		if _, ok := r.adapters[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// Providers lists registered providers in name order.
func (r *Registry) Providers() []models.ProviderID {
	ids := make([]models.ProviderID, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
