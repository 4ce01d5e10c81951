package repositories

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rios0rios0/runref/internal/domain/entities"
	domainRepos "github.com/rios0rios0/runref/internal/domain/repositories"
)

// ProviderFactory builds a fresh provider, with its own decorator stack, for one fetch.
type ProviderFactory func(opts domainRepos.ProviderOptions) domainRepos.ProviderRepository

// ProviderRegistry maps hosting domains to provider factories.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
	options   domainRepos.ProviderOptions
}

// NewProviderRegistry creates an empty registry whose providers are built with options.
func NewProviderRegistry(options domainRepos.ProviderOptions) *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
		options:   options,
	}
}

// Register adds a provider factory under the given host (e.g. "gitlab.com").
func (r *ProviderRegistry) Register(host string, factory ProviderFactory) {
	r.providers[normalizeHost(host)] = factory
}

// Get returns a new provider instance for host. An empty host selects github.com.
func (r *ProviderRegistry) Get(host string) (domainRepos.ProviderRepository, error) {
	if host == "" {
		host = entities.DefaultHost
	}
	factory, ok := r.providers[normalizeHost(host)]
	if !ok {
		return nil, fmt.Errorf("unsupported host: %q (supported: %s)", host, strings.Join(r.Hosts(), ", "))
	}
	return factory(r.options), nil
}

// Hosts returns the registered hosts in sorted order.
func (r *ProviderRegistry) Hosts() []string {
	hosts := make([]string, 0, len(r.providers))
	for host := range r.providers {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

func normalizeHost(host string) string {
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
