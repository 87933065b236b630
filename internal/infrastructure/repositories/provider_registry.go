package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	domainRepos "github.com/rios0rios0/manifestpush/internal/domain/repositories"
)

// ProviderRegistry manages all registered hosting provider implementations.
type ProviderRegistry struct {
	providers map[string]domainRepos.ObjectGraphFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]domainRepos.ObjectGraphFactory),
	}
}

// Register adds a provider factory under the given name (e.g. "github").
func (r *ProviderRegistry) Register(name string, factory domainRepos.ObjectGraphFactory) {
	r.providers[name] = factory
}

// Get returns a configured object-graph repository for the given provider name.
func (r *ProviderRegistry) Get(
	name string,
	settings *entities.Settings,
) (domainRepos.ObjectGraphRepository, error) {
	if name == "" {
		name = entities.ProviderGitHub
	}
	factory, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider type %q", entities.ErrConfiguration, name)
	}
	return factory(settings)
}

// Names returns the sorted list of registered provider names.
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
