package domain

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 30 * time.Millisecond

func TestSearch_RapidTypingIssuesOneRequest(t *testing.T) {
	backend := newFakeBackend()
	s := NewSearch(backend, testDebounce, DefaultMinQueryLength, nil)
	defer s.Close()

	for _, text := range []string{"P", "Pa", "Par", "Para", "Param"} {
		s.Submit(text)
		time.Sleep(2 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return backend.geocodeCallCount() == 1 }, waitFor, tick)
	assert.Never(t, func() bool { return backend.geocodeCallCount() > 1 }, 5*testDebounce, tick)
	assert.Equal(t, []string{"Param"}, backend.geocodeQueries())
}

func TestSearch_ShortQueryClearsWithoutRequest(t *testing.T) {
	backend := newFakeBackend()
	backend.results["Paramaribo"] = []model.SearchResult{{Name: "Paramaribo"}}
	s := NewSearch(backend, testDebounce, DefaultMinQueryLength, nil)
	defer s.Close()

	s.Submit("Paramaribo")
	assert.Eventually(t, func() bool { return len(s.Snapshot().Results) == 1 }, waitFor, tick)

	s.Submit("Pa")
	snap := s.Snapshot()
	assert.Empty(t, snap.Results)
	assert.False(t, snap.Searching)
	assert.Never(t, func() bool { return backend.geocodeCallCount() > 1 }, 5*testDebounce, tick)
}

func TestSearch_OutOfOrderResponses(t *testing.T) {
	backend := newFakeBackend()
	backend.results["abc"] = []model.SearchResult{{Name: "R1"}}
	backend.results["abcd"] = []model.SearchResult{{Name: "R2"}}

	slowStarted := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	backend.geocodeHook = func(ctx context.Context, query string) {
		if query == "abc" {
			once.Do(func() { close(slowStarted) })
			<-release
		}
	}

	s := NewSearch(backend, testDebounce, DefaultMinQueryLength, nil)
	defer s.Close()

	s.Submit("abc")
	<-slowStarted
	s.Submit("abcd")

	assert.Eventually(t, func() bool {
		results := s.Snapshot().Results
		return len(results) == 1 && results[0].Name == "R2"
	}, waitFor, tick)

	close(release)
	assert.Never(t, func() bool {
		results := s.Snapshot().Results
		return len(results) != 1 || results[0].Name != "R2"
	}, 5*testDebounce, tick)
}

func TestSearch_SelectSetsMarker(t *testing.T) {
	backend := newFakeBackend()
	s := NewSearch(backend, testDebounce, DefaultMinQueryLength, nil)
	defer s.Close()

	result := model.SearchResult{Name: "Paramaribo, Suriname", Latitude: 5.852, Longitude: -55.203}
	s.Submit("Paramaribo")
	marker := s.Select(result)

	assert.Equal(t, model.SearchMarker{Name: result.Name, Latitude: result.Latitude, Longitude: result.Longitude}, marker)
	snap := s.Snapshot()
	assert.Empty(t, snap.Results)
	assert.Equal(t, result.Name, snap.Query)
	require.NotNil(t, snap.Marker)

	// выбор отменяет отложенный запрос
	assert.Never(t, func() bool { return backend.geocodeCallCount() > 0 }, 5*testDebounce, tick)

	s.ClearMarker(marker)
	assert.Nil(t, s.Snapshot().Marker)
}

func TestSearch_NotifiesOnChange(t *testing.T) {
	backend := newFakeBackend()
	var changes atomic.Int32
	s := NewSearch(backend, testDebounce, DefaultMinQueryLength, func() { changes.Add(1) })
	defer s.Close()

	s.Submit("Lelydorp")
	assert.Eventually(t, func() bool { return changes.Load() >= 2 }, waitFor, tick)
}

func TestSearch_ClearDropsEverything(t *testing.T) {
	backend := newFakeBackend()
	s := NewSearch(backend, testDebounce, DefaultMinQueryLength, nil)
	defer s.Close()

	s.Select(model.SearchResult{Name: "Nieuw Nickerie", Latitude: 5.95, Longitude: -56.98})
	s.Submit("Albina")
	s.Clear()

	snap := s.Snapshot()
	assert.Empty(t, snap.Query)
	assert.Empty(t, snap.Results)
	assert.Nil(t, snap.Marker)
	assert.Never(t, func() bool { return backend.geocodeCallCount() > 0 }, 5*testDebounce, tick)

	_, ok := s.Marker()
	assert.False(t, ok)
}
