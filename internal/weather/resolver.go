package weather

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Chain order mirrors the original provider priorities: WeatherAPI first for
// the primary path, OpenWeatherMap first when falling back.
var (
	primaryChain   = []string{ProviderWeatherAPI, ProviderOpenWeatherMap, ProviderVisualCrossing}
	secondaryChain = []string{ProviderOpenWeatherMap, ProviderVisualCrossing, ProviderWeatherAPI}
)

// Resolver selects a provider adapter for each request and falls back once on
// failure. It owns one circuit breaker per provider id; adapters are
// constructed per call and share the breaker for their provider.
type Resolver struct {
	builders map[string]Builder

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewResolver creates a Resolver over a builder registry, normally
// providers.Registry(client).
func NewResolver(builders map[string]Builder) *Resolver {
	return &Resolver{
		builders: builders,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (r *Resolver) breaker(id string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[id]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        id,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
		r.breakers[id] = cb
	}
	return cb
}

// Adapter constructs the adapter for a provider id with the caller's
// credentials. Used for operations that must not fall back, such as
// historical lookups where provider semantics differ.
func (r *Resolver) Adapter(id string, creds Credentials) (Provider, error) {
	build, ok := r.builders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, id)
	}
	return build(creds.Key(id), r.breaker(id)), nil
}

// Resolve returns exactly one coherent snapshot for the coordinates, chosen
// deterministically. The preferred provider is tried first when configured;
// on failure one secondary is tried, and its source label is tagged with
// " (Fallback)" so callers can tell the substitution happened. At most two
// upstream fetches are made per call.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64, days int, preferred string, creds Credentials) (Snapshot, string, error) {
	primary, primaryID := r.pick(preferred, creds)
	if primary == nil {
		return Snapshot{}, "", ErrNoProviderConfigured
	}

	snap, err := primary.FetchSnapshot(ctx, lat, lon, days)
	if err == nil {
		return snap, primary.SourceLabel(), nil
	}
	log.Printf("resolver: primary provider %s failed: %v", primaryID, err)

	secondary, secondaryID := r.pickSecondary(primaryID, creds)
	if secondary == nil {
		return Snapshot{}, "", fmt.Errorf("%w: %v", ErrAllProvidersUnavailable, err)
	}

	snap, err2 := secondary.FetchSnapshot(ctx, lat, lon, days)
	if err2 != nil {
		log.Printf("resolver: secondary provider %s failed: %v", secondaryID, err2)
		return Snapshot{}, "", fmt.Errorf("%w: %v; %v", ErrAllProvidersUnavailable, err, err2)
	}
	return snap, secondary.SourceLabel() + " (Fallback)", nil
}

// pick chooses the primary adapter: the preferred provider when it exists and
// is configured, otherwise the first configured provider in the fixed
// primary chain.
func (r *Resolver) pick(preferred string, creds Credentials) (Provider, string) {
	if preferred != "" {
		if build, ok := r.builders[preferred]; ok {
			p := build(creds.Key(preferred), r.breaker(preferred))
			if p.IsConfigured() {
				return p, preferred
			}
		}
	}
	for _, id := range primaryChain {
		build, ok := r.builders[id]
		if !ok {
			continue
		}
		p := build(creds.Key(id), r.breaker(id))
		if p.IsConfigured() {
			return p, id
		}
	}
	return nil, ""
}

// pickSecondary returns the first configured adapter in the secondary chain
// that is not the provider that just failed.
func (r *Resolver) pickSecondary(failedID string, creds Credentials) (Provider, string) {
	for _, id := range secondaryChain {
		if id == failedID {
			continue
		}
		build, ok := r.builders[id]
		if !ok {
			continue
		}
		p := build(creds.Key(id), r.breaker(id))
		if p.IsConfigured() {
			return p, id
		}
	}
	return nil, ""
}
