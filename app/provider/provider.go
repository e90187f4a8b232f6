package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Provider fetches a bounded batch of raw items from one external source and
// normalizes them into DiscoveryItems. Implementations return an error only
// when the whole fetch failed; malformed entries inside a successful payload
// are skipped, not escalated.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]DiscoveryItem, error)
}

// Registry resolves configured provider names to adapters. It is built once
// at startup; unknown names fail fast instead of being silently dropped.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

func (r *Registry) Resolve(names []string) ([]Provider, error) {
	resolved := make([]Provider, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p, ok := r.providers[name]
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s (known: %s)", name, strings.Join(r.Known(), ", "))
		}
		resolved = append(resolved, p)
	}
	return resolved, nil
}

func (r *Registry) Known() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
