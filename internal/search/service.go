// Package search resolves free-text queries to locations. A remote searcher
// is tried first; an embedded gazetteer of major cities answers when the
// remote source fails or comes back empty, so search never errors out.
package search

import (
	"context"
	_ "embed"
	"log"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/weatherwell/weathercore/internal/common"
	"github.com/weatherwell/weathercore/internal/weather"
)

//go:embed gazetteer.yaml
var gazetteerYAML []byte

// Searcher is the remote lookup, usually a provider adapter.
type Searcher interface {
	SearchLocations(ctx context.Context, query string) ([]weather.Location, error)
}

type gazetteer struct {
	Locations []struct {
		Name    string  `yaml:"name"`
		Country string  `yaml:"country"`
		Region  string  `yaml:"region"`
		Lat     float64 `yaml:"lat"`
		Lon     float64 `yaml:"lon"`
	} `yaml:"locations"`
}

// Service answers location searches.
type Service struct {
	remote   Searcher
	fallback []weather.Location
}

func NewService(remote Searcher) (*Service, error) {
	var g gazetteer
	if err := yaml.Unmarshal(gazetteerYAML, &g); err != nil {
		return nil, err
	}

	fallback := make([]weather.Location, 0, len(g.Locations))
	for _, l := range g.Locations {
		fallback = append(fallback, weather.Location{
			Name:    l.Name,
			Country: l.Country,
			Region:  l.Region,
			Lat:     l.Lat,
			Lon:     l.Lon,
		})
	}
	return &Service{remote: remote, fallback: fallback}, nil
}

// Search returns candidate locations for a query. Queries shorter than two
// characters return nothing without touching the network. The method never
// returns an error; remote failures degrade to the gazetteer.
func (s *Service) Search(ctx context.Context, query string) []weather.Location {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil
	}

	if s.remote != nil {
		results, err := s.remote.SearchLocations(ctx, query)
		if err == nil && len(results) > 0 {
			return results
		}
		if err != nil {
			log.Printf("search: remote lookup failed, using gazetteer: %v", err)
		}
	}

	var matches []weather.Location
	for _, loc := range s.fallback {
		if common.ContainsFold(loc.Name, query) ||
			common.ContainsFold(loc.Country, query) ||
			common.ContainsFold(loc.Region, query) {
			matches = append(matches, loc)
		}
	}
	return matches
}
