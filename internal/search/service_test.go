package search

import (
	"context"
	"errors"
	"testing"

	"github.com/weatherwell/weathercore/internal/weather"
)

type stubSearcher struct {
	results []weather.Location
	err     error
	calls   int
}

func (s *stubSearcher) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	s.calls++
	return s.results, s.err
}

func TestSearchShortQuerySkipsNetwork(t *testing.T) {
	remote := &stubSearcher{}
	svc, err := NewService(remote)
	if err != nil {
		t.Fatal(err)
	}

	for _, q := range []string{"", " ", "a", " a "} {
		if got := svc.Search(context.Background(), q); len(got) != 0 {
			t.Errorf("Search(%q) = %d results, want none", q, len(got))
		}
	}
	if remote.calls != 0 {
		t.Errorf("remote calls = %d, want 0", remote.calls)
	}
}

func TestSearchPrefersRemote(t *testing.T) {
	remote := &stubSearcher{results: []weather.Location{{Name: "Londrina", Country: "Brazil"}}}
	svc, err := NewService(remote)
	if err != nil {
		t.Fatal(err)
	}

	got := svc.Search(context.Background(), "Lond")
	if len(got) != 1 || got[0].Name != "Londrina" {
		t.Errorf("results = %+v", got)
	}
}

func TestSearchFallsBackToGazetteer(t *testing.T) {
	remote := &stubSearcher{err: errors.New("upstream down")}
	svc, err := NewService(remote)
	if err != nil {
		t.Fatal(err)
	}

	got := svc.Search(context.Background(), "lond")
	if len(got) != 1 || got[0].Name != "London" {
		t.Fatalf("results = %+v, want London", got)
	}
	if got[0].Lat == 0 || got[0].Lon == 0 {
		t.Error("gazetteer entry missing coordinates")
	}
}

func TestSearchGazetteerMatchesCountryAndRegion(t *testing.T) {
	svc, err := NewService(&stubSearcher{})
	if err != nil {
		t.Fatal(err)
	}

	if got := svc.Search(context.Background(), "germany"); len(got) != 1 || got[0].Name != "Berlin" {
		t.Errorf("country match = %+v", got)
	}
	if got := svc.Search(context.Background(), "lazio"); len(got) != 1 || got[0].Name != "Rome" {
		t.Errorf("region match = %+v", got)
	}
}

func TestSearchEmptyRemoteUsesGazetteer(t *testing.T) {
	svc, err := NewService(&stubSearcher{results: nil})
	if err != nil {
		t.Fatal(err)
	}

	if got := svc.Search(context.Background(), "stockholm"); len(got) != 1 {
		t.Errorf("results = %+v", got)
	}
}

func TestReverseGeocoderDisabledWithoutKey(t *testing.T) {
	g := NewReverseGeocoder("")
	if g.Enabled() {
		t.Fatal("expected disabled geocoder")
	}
	loc := weather.Location{Name: "51.50°, -0.13°", Lat: 51.5, Lon: -0.13}
	if got := g.Rename(loc); got != loc {
		t.Errorf("Rename changed location without a key: %+v", got)
	}
	if _, err := g.Lookup(51.5, -0.13); err == nil {
		t.Error("Lookup must fail when unconfigured")
	}
}
