package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

// stubProvider counts fetches and fails on demand.
type stubProvider struct {
	label      string
	configured bool
	err        error
	calls      *int
}

func (s *stubProvider) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (Snapshot, error) {
	if s.calls != nil {
		*s.calls++
	}
	if s.err != nil {
		return Snapshot{}, s.err
	}
	return Snapshot{Current: Current{Temperature: 20}}, nil
}

func (s *stubProvider) FetchHistorical(ctx context.Context, lat, lon float64, date string) (Snapshot, error) {
	return Snapshot{}, nil
}

func (s *stubProvider) SearchLocations(ctx context.Context, query string) ([]Location, error) {
	return nil, nil
}

func (s *stubProvider) IsConfigured() bool  { return s.configured }
func (s *stubProvider) SourceLabel() string { return s.label }

func stubBuilder(p *stubProvider) Builder {
	return func(_ string, _ *gobreaker.CircuitBreaker) Provider { return p }
}

func TestResolvePrimarySucceeds(t *testing.T) {
	var primaryCalls, secondaryCalls int
	r := NewResolver(map[string]Builder{
		ProviderWeatherAPI:     stubBuilder(&stubProvider{label: "WeatherAPI", configured: true, calls: &primaryCalls}),
		ProviderOpenWeatherMap: stubBuilder(&stubProvider{label: "OpenWeatherMap", configured: true, calls: &secondaryCalls}),
	})

	snap, source, err := r.Resolve(context.Background(), 51.5, -0.1, 7, "", Credentials{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if source != "WeatherAPI" {
		t.Errorf("source = %q", source)
	}
	if snap.Current.Temperature != 20 {
		t.Errorf("temperature = %v", snap.Current.Temperature)
	}
	if primaryCalls != 1 || secondaryCalls != 0 {
		t.Errorf("calls = %d primary, %d secondary", primaryCalls, secondaryCalls)
	}
}

func TestResolveFallbackTagsSource(t *testing.T) {
	var primaryCalls, secondaryCalls int
	r := NewResolver(map[string]Builder{
		ProviderWeatherAPI:     stubBuilder(&stubProvider{label: "WeatherAPI", configured: true, err: errors.New("boom"), calls: &primaryCalls}),
		ProviderOpenWeatherMap: stubBuilder(&stubProvider{label: "OpenWeatherMap", configured: true, calls: &secondaryCalls}),
	})

	_, source, err := r.Resolve(context.Background(), 51.5, -0.1, 7, "", Credentials{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if source != "OpenWeatherMap (Fallback)" {
		t.Errorf("source = %q, want fallback tag", source)
	}
	if primaryCalls != 1 || secondaryCalls != 1 {
		t.Errorf("calls = %d primary, %d secondary, want 1/1", primaryCalls, secondaryCalls)
	}
}

func TestResolveSecondarySkipsFailedProvider(t *testing.T) {
	var owmCalls, vcCalls int
	// OpenWeatherMap is both the preferred primary and the head of the
	// secondary chain; after it fails the fallback must move past it.
	r := NewResolver(map[string]Builder{
		ProviderOpenWeatherMap: stubBuilder(&stubProvider{label: "OpenWeatherMap", configured: true, err: errors.New("boom"), calls: &owmCalls}),
		ProviderVisualCrossing: stubBuilder(&stubProvider{label: "Visual Crossing", configured: true, calls: &vcCalls}),
	})

	_, source, err := r.Resolve(context.Background(), 51.5, -0.1, 7, ProviderOpenWeatherMap, Credentials{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if source != "Visual Crossing (Fallback)" {
		t.Errorf("source = %q", source)
	}
	if owmCalls != 1 || vcCalls != 1 {
		t.Errorf("calls = %d owm, %d vc", owmCalls, vcCalls)
	}
}

func TestResolveAggregateErrorAfterTwoFailures(t *testing.T) {
	var total int
	fail := func(label string) Builder {
		return stubBuilder(&stubProvider{label: label, configured: true, err: errors.New(label + " down"), calls: &total})
	}
	r := NewResolver(map[string]Builder{
		ProviderWeatherAPI:     fail("WeatherAPI"),
		ProviderOpenWeatherMap: fail("OpenWeatherMap"),
		ProviderVisualCrossing: fail("Visual Crossing"),
	})

	_, _, err := r.Resolve(context.Background(), 51.5, -0.1, 7, "", Credentials{})
	if !errors.Is(err, ErrAllProvidersUnavailable) {
		t.Fatalf("err = %v, want ErrAllProvidersUnavailable", err)
	}
	// Never a third upstream call, no matter how many providers are registered.
	if total != 2 {
		t.Errorf("upstream calls = %d, want 2", total)
	}
}

func TestResolveNoProviderConfigured(t *testing.T) {
	r := NewResolver(map[string]Builder{
		ProviderWeatherAPI: stubBuilder(&stubProvider{label: "WeatherAPI", configured: false}),
	})

	_, _, err := r.Resolve(context.Background(), 51.5, -0.1, 7, "", Credentials{})
	if !errors.Is(err, ErrNoProviderConfigured) {
		t.Fatalf("err = %v, want ErrNoProviderConfigured", err)
	}
}

func TestResolvePreferredUnconfiguredFallsThrough(t *testing.T) {
	r := NewResolver(map[string]Builder{
		ProviderQWeather:   stubBuilder(&stubProvider{label: "QWeather", configured: false}),
		ProviderWeatherAPI: stubBuilder(&stubProvider{label: "WeatherAPI", configured: true}),
	})

	_, source, err := r.Resolve(context.Background(), 51.5, -0.1, 7, ProviderQWeather, Credentials{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if source != "WeatherAPI" {
		t.Errorf("source = %q, want chain head", source)
	}
}

func TestAdapterUnknownProvider(t *testing.T) {
	r := NewResolver(map[string]Builder{})
	_, err := r.Adapter("nope", Credentials{})
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err = %v, want ErrUnknownProvider", err)
	}
}

func TestBreakerSharedPerProvider(t *testing.T) {
	r := NewResolver(map[string]Builder{})
	a := r.breaker(ProviderWeatherAPI)
	b := r.breaker(ProviderWeatherAPI)
	if a != b {
		t.Error("expected one breaker per provider id")
	}
	if r.breaker(ProviderQWeather) == a {
		t.Error("providers must not share breakers")
	}
}
