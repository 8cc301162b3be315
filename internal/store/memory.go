// Package store keeps the small pieces of state that outlive a request: the
// last location each user asked about and their recent searches.
package store

import (
	"sync"
	"time"

	"github.com/weatherwell/weathercore/internal/weather"
)

const maxRecentSearches = 10

// StoredLocation is the last location a weather request resolved, with the
// time it was stored. The alert evaluator treats entries older than its
// staleness window as absent.
type StoredLocation struct {
	Location weather.Location
	StoredAt time.Time
}

// Memory is the in-process store. Zero value is not usable; construct with
// NewMemory.
type Memory struct {
	mu        sync.RWMutex
	lastKnown *StoredLocation
	recent    []weather.Location
}

func NewMemory() *Memory {
	return &Memory{}
}

// SaveLastKnown records the most recently requested location.
func (m *Memory) SaveLastKnown(loc weather.Location, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastKnown = &StoredLocation{Location: loc, StoredAt: at}
}

// LastKnown returns the stored location, or false when none was ever saved.
func (m *Memory) LastKnown() (StoredLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastKnown == nil {
		return StoredLocation{}, false
	}
	return *m.lastKnown, true
}

// AddRecentSearch pushes a location to the front of the recent-search list,
// removing any previous entry for the same place. The list holds at most ten
// entries.
func (m *Memory) AddRecentSearch(loc weather.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]weather.Location, 0, len(m.recent)+1)
	filtered = append(filtered, loc)
	for _, r := range m.recent {
		if sameLocation(r, loc) {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) > maxRecentSearches {
		filtered = filtered[:maxRecentSearches]
	}
	m.recent = filtered
}

// RecentSearches returns a copy of the recent-search list, most recent first.
func (m *Memory) RecentSearches() []weather.Location {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]weather.Location, len(m.recent))
	copy(out, m.recent)
	return out
}

// ClearRecentSearches drops the search history.
func (m *Memory) ClearRecentSearches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recent = nil
}

func sameLocation(a, b weather.Location) bool {
	return a.Name == b.Name && a.Country == b.Country
}
