package domain

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultSearchDebounce = 500 * time.Millisecond
	DefaultMinQueryLength = 3
)

type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]model.SearchResult, error)
}

type SearchSnapshot struct {
	Query     string               `json:"query"`
	Results   []model.SearchResult `json:"results"`
	Searching bool                 `json:"searching"`
	Marker    *model.SearchMarker  `json:"searchMarker"`
}

// Search поиск адреса с задержкой ввода. Применяется только ответ на
// последний отправленный запрос.
type Search struct {
	geocoder  Geocoder
	debounce  time.Duration
	minLength int
	onChange  func()

	mu        sync.Mutex
	query     string
	results   []model.SearchResult
	searching bool
	marker    *model.SearchMarker
	timer     *time.Timer
	pending   uint64
	guard     guard
	inflight  context.CancelFunc
	closed    bool
}

func NewSearch(geocoder Geocoder, debounce time.Duration, minLength int, onChange func()) *Search {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	if minLength <= 0 {
		minLength = DefaultMinQueryLength
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &Search{
		geocoder:  geocoder,
		debounce:  debounce,
		minLength: minLength,
		onChange:  onChange,
	}
}

// Submit принимает очередное значение строки поиска.
func (s *Search) Submit(text string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.query = text
	s.cancelPendingLocked()

	if utf8.RuneCountInString(text) < s.minLength {
		s.results = nil
		s.searching = false
		s.dropInflightLocked()
		s.mu.Unlock()
		s.onChange()
		return
	}

	gen := s.pending
	s.searching = true
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(gen, text)
	})
	s.mu.Unlock()
	s.onChange()
}

func (s *Search) cancelPendingLocked() {
	s.pending++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Search) dropInflightLocked() {
	s.guard.advance()
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}

func (s *Search) fire(gen uint64, text string) {
	s.mu.Lock()
	if s.closed || gen != s.pending {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	ticket := s.guard.issue()
	if s.inflight != nil {
		s.inflight()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.inflight = cancel
	s.mu.Unlock()
	defer cancel()

	log.WithFields(log.Fields{"query": text, "seq": ticket.Seq}).Debug("Геокодирование")
	results, err := s.geocoder.Geocode(ctx, text)

	s.mu.Lock()
	if !s.guard.latest(ticket) {
		s.mu.Unlock()
		log.WithFields(log.Fields{"query": text, "seq": ticket.Seq}).Debug("Устаревший результат поиска отброшен")
		return
	}
	s.inflight = nil
	s.searching = false
	if err != nil {
		log.WithFields(log.Fields{"query": text, "err": err}).Warn("Ошибка геокодирования")
		s.results = []model.SearchResult{}
	} else {
		s.results = results
	}
	s.mu.Unlock()
	s.onChange()
}

// Select выбирает результат: список очищается, на карте ставится метка.
func (s *Search) Select(result model.SearchResult) model.SearchMarker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked()
	s.dropInflightLocked()
	s.results = nil
	s.searching = false
	s.query = result.Name
	s.marker = &model.SearchMarker{
		Name:      result.Name,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
	}
	return *s.marker
}

func (s *Search) Marker() (model.SearchMarker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marker == nil {
		return model.SearchMarker{}, false
	}
	return *s.marker, true
}

// ClearMarker убирает метку, если она всё ещё та же.
func (s *Search) ClearMarker(marker model.SearchMarker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marker != nil && *s.marker == marker {
		s.marker = nil
		s.query = ""
	}
}

func (s *Search) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelPendingLocked()
	s.dropInflightLocked()
	s.query = ""
	s.results = nil
	s.searching = false
	s.marker = nil
}

func (s *Search) Close() {
	s.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Search) Snapshot() SearchSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SearchSnapshot{
		Query:     s.query,
		Results:   make([]model.SearchResult, len(s.results)),
		Searching: s.searching,
	}
	copy(snap.Results, s.results)
	if s.marker != nil {
		marker := *s.marker
		snap.Marker = &marker
	}
	return snap
}
