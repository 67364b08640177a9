package domain

import (
	"sort"
	"sync"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	log "github.com/sirupsen/logrus"
)

type SelectionState string

const (
	StateIdle      SelectionState = "idle"
	StateSelecting SelectionState = "selecting"
	StateFocused   SelectionState = "focused"
)

// SelectionTag параметры одного тика опроса выбранного транспорта.
type SelectionTag struct {
	VehicleID int32
	Window    types.HistoryWindow
	History   Ticket
	Saved     Ticket
}

type SelectionSnapshot struct {
	State          SelectionState         `json:"state"`
	VehicleID      *int32                 `json:"selectedVehicleId"`
	HistoryHours   types.HistoryWindow    `json:"historyHours"`
	History        []model.LocationSample `json:"history"`
	SavedLocations []model.SavedLocation  `json:"savedLocations"`
}

// Session состояние выбора транспорта: история трека и сохранённые места
// относятся только к текущему выбору.
type Session struct {
	mu        sync.Mutex
	state     SelectionState
	selected  bool
	vehicleID int32
	window    types.HistoryWindow
	history   []model.LocationSample
	saved     []model.SavedLocation

	historyGuard guard
	savedGuard   guard

	// первая непустая история после выбора центрирует карту
	recenterPending bool
}

func NewSession(window types.HistoryWindow) *Session {
	if !window.IsValid() {
		window = types.DefaultHistoryWindow
	}
	return &Session{
		state:  StateIdle,
		window: window,
	}
}

// Select выбирает транспорт. Повторный выбор того же транспорта ничего не
// меняет и возвращает false.
func (s *Session) Select(vehicleID int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected && s.vehicleID == vehicleID {
		return false
	}
	s.selected = true
	s.vehicleID = vehicleID
	s.state = StateSelecting
	s.history = nil
	s.saved = nil
	s.historyGuard.advance()
	s.savedGuard.advance()
	s.recenterPending = true
	return true
}

func (s *Session) Deselect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selected {
		return false
	}
	s.clearLocked()
	return true
}

func (s *Session) clearLocked() {
	s.selected = false
	s.vehicleID = 0
	s.state = StateIdle
	s.history = nil
	s.saved = nil
	s.historyGuard.advance()
	s.savedGuard.advance()
	s.recenterPending = false
}

// SetWindow меняет глубину истории. Текущий трек остаётся видимым, пока не
// придёт новый.
func (s *Session) SetWindow(window types.HistoryWindow) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.window == window {
		return false
	}
	s.window = window
	if s.selected {
		s.state = StateSelecting
		s.historyGuard.advance()
	}
	return true
}

// Invalidate отбрасывает ответы на запросы, отправленные до вызова.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.historyGuard.advance()
	s.savedGuard.advance()
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
}

func (s *Session) Issue() (SelectionTag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selected {
		return SelectionTag{}, false
	}
	return SelectionTag{
		VehicleID: s.vehicleID,
		Window:    s.window,
		History:   s.historyGuard.issue(),
		Saved:     s.savedGuard.issue(),
	}, true
}

// IssueSaved выдаёт метку только для сохранённых мест.
func (s *Session) IssueSaved() (int32, Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selected {
		return 0, Ticket{}, false
	}
	return s.vehicleID, s.savedGuard.issue(), true
}

// ApplyHistory применяет ответ истории. Ошибка очищает трек. Если это первая
// непустая история после выбора, возвращается точка для центрирования.
func (s *Session) ApplyHistory(t Ticket, history []model.LocationSample, err error) (bool, *model.LocationSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.historyGuard.accept(t) {
		log.WithFields(log.Fields{"vehicle_id": s.vehicleID, "seq": t.Seq}).Debug("Устаревшая история отброшена")
		return false, nil
	}

	s.state = StateFocused
	if err != nil {
		log.WithFields(log.Fields{"vehicle_id": s.vehicleID, "err": err}).Warn("Не удалось получить историю трека")
		s.history = []model.LocationSample{}
		return true, nil
	}

	samples := make([]model.LocationSample, len(history))
	copy(samples, history)
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time().Before(samples[j].Time())
	})
	s.history = samples

	if s.recenterPending && len(samples) > 0 {
		s.recenterPending = false
		latest := samples[len(samples)-1]
		return true, &latest
	}
	return true, nil
}

func (s *Session) ApplySaved(t Ticket, saved []model.SavedLocation, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.savedGuard.accept(t) {
		log.WithFields(log.Fields{"vehicle_id": s.vehicleID, "seq": t.Seq}).Debug("Устаревшие сохранённые места отброшены")
		return false
	}
	if err != nil {
		log.WithFields(log.Fields{"vehicle_id": s.vehicleID, "err": err}).Warn("Не удалось получить сохранённые места")
		s.saved = []model.SavedLocation{}
		return true
	}
	s.saved = make([]model.SavedLocation, len(saved))
	copy(s.saved, saved)
	return true
}

func (s *Session) Selected() (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.vehicleID, s.selected
}

func (s *Session) Window() types.HistoryWindow {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.window
}

func (s *Session) Snapshot() SelectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SelectionSnapshot{
		State:          s.state,
		HistoryHours:   s.window,
		History:        make([]model.LocationSample, len(s.history)),
		SavedLocations: make([]model.SavedLocation, len(s.saved)),
	}
	copy(snap.History, s.history)
	copy(snap.SavedLocations, s.saved)
	if s.selected {
		id := s.vehicleID
		snap.VehicleID = &id
	}
	return snap
}
