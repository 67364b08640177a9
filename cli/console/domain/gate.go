package domain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPlaceCategory   = "General"
	MapPlaceDescription    = "Added from map"
	searchDescriptionStart = "Saved from search: "
)

type PlaceStore interface {
	GetPlaces(ctx context.Context) ([]model.PlaceOfInterest, error)
	CreatePlace(ctx context.Context, place request.CreatePlace) (int32, error)
	UpdatePlace(ctx context.Context, placeID int32, update request.UpdatePlace) error
	DeletePlace(ctx context.Context, placeID int32) error
}

// Prompt спрашивает у оператора название места для точки на карте. Пустая
// строка означает отказ.
type Prompt func(at types.Position2D) string

type PlacesSnapshot struct {
	Places  []model.PlaceOfInterest `json:"placesOfInterest"`
	PinMode bool                    `json:"pinMode"`
	TempPin *types.Position2D       `json:"tempPin"`
}

// Gate владеет местами интереса и режимом установки меток. Проверки роли
// только скрывают недоступные действия, окончательно решает бэкенд.
type Gate struct {
	Store PlaceStore

	mu      sync.Mutex
	role    types.Role
	pinMode bool
	tempPin *types.Position2D
	places  []model.PlaceOfInterest
	guard   guard
}

func NewGate(store PlaceStore) *Gate {
	return &Gate{Store: store}
}

func (g *Gate) SetRole(role types.Role) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.role = role
	if !role.CanDropPins() {
		g.pinMode = false
	}
}

func (g *Gate) canMutate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.role.CanDropPins()
}

func (g *Gate) TogglePinMode() (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.role.CanDropPins() {
		return false, ErrPinModeNotAllowed
	}
	g.pinMode = !g.pinMode
	return g.pinMode, nil
}

func (g *Gate) PinMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.pinMode
}

// MapClick обрабатывает клик по карте. Вне режима установки меток клик
// игнорируется. Режим выключается после клика при любом исходе.
func (g *Gate) MapClick(ctx context.Context, at types.Position2D, prompt Prompt) (bool, error) {
	g.mu.Lock()
	if !g.pinMode {
		g.mu.Unlock()
		return false, nil
	}
	g.pinMode = false
	if !at.IsValid() {
		g.mu.Unlock()
		return false, ErrInvalidPosition
	}
	pin := at
	g.tempPin = &pin
	g.mu.Unlock()

	defer g.clearTempPin()

	name := strings.TrimSpace(prompt(at))
	if name == "" {
		return false, nil
	}

	id, err := g.Store.CreatePlace(ctx, request.CreatePlace{
		Name:        name,
		Latitude:    at.Latitude,
		Longitude:   at.Longitude,
		Category:    DefaultPlaceCategory,
		Description: MapPlaceDescription,
	})
	if err != nil {
		return false, fmt.Errorf("не удалось добавить место: %w", err)
	}
	log.WithFields(log.Fields{"place_id": id, "name": name}).Info("Место добавлено с карты")

	g.refreshAfterMutation(ctx)
	return true, nil
}

func (g *Gate) clearTempPin() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tempPin = nil
}

// SaveMarker сохраняет метку результата поиска как место интереса.
func (g *Gate) SaveMarker(ctx context.Context, marker model.SearchMarker, name, category, description string) (int32, error) {
	if !g.canMutate() {
		return 0, ErrPinModeNotAllowed
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, ErrNameRequired
	}
	if strings.TrimSpace(category) == "" {
		category = DefaultPlaceCategory
	}
	if strings.TrimSpace(description) == "" {
		description = searchDescriptionStart + marker.Name
	}

	id, err := g.Store.CreatePlace(ctx, request.CreatePlace{
		Name:        name,
		Address:     marker.Name,
		Latitude:    marker.Latitude,
		Longitude:   marker.Longitude,
		Category:    category,
		Description: description,
	})
	if err != nil {
		return 0, fmt.Errorf("не удалось сохранить место: %w", err)
	}
	log.WithFields(log.Fields{"place_id": id, "name": name}).Info("Результат поиска сохранён как место")

	g.refreshAfterMutation(ctx)
	return id, nil
}

func (g *Gate) UpdatePlace(ctx context.Context, placeID int32, update request.UpdatePlace) error {
	if !g.canMutate() {
		return ErrPinModeNotAllowed
	}
	if update.IsEmpty() {
		return nil
	}
	if err := g.Store.UpdatePlace(ctx, placeID, update); err != nil {
		return fmt.Errorf("не удалось изменить место %d: %w", placeID, err)
	}
	g.refreshAfterMutation(ctx)
	return nil
}

func (g *Gate) DeletePlace(ctx context.Context, placeID int32) error {
	if !g.canMutate() {
		return ErrPinModeNotAllowed
	}
	if err := g.Store.DeletePlace(ctx, placeID); err != nil {
		return fmt.Errorf("не удалось удалить место %d: %w", placeID, err)
	}
	g.refreshAfterMutation(ctx)
	return nil
}

func (g *Gate) refreshAfterMutation(ctx context.Context) {
	if err := g.RefreshPlaces(ctx); err != nil {
		log.WithField("err", err).Warn("Не удалось обновить места после изменения")
	}
}

// RefreshPlaces перечитывает места интереса. Ошибка очищает список.
func (g *Gate) RefreshPlaces(ctx context.Context) error {
	g.mu.Lock()
	ticket := g.guard.issue()
	g.mu.Unlock()

	places, err := g.Store.GetPlaces(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.guard.accept(ticket) {
		log.WithField("seq", ticket.Seq).Debug("Устаревший список мест отброшен")
		return nil
	}
	if err != nil {
		g.places = []model.PlaceOfInterest{}
		return fmt.Errorf("не удалось получить места интереса: %w", err)
	}
	g.places = places
	return nil
}

func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.guard.advance()
}

func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.guard.advance()
	g.role = ""
	g.pinMode = false
	g.tempPin = nil
	g.places = nil
}

func (g *Gate) Snapshot() PlacesSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := PlacesSnapshot{
		Places:  make([]model.PlaceOfInterest, len(g.places)),
		PinMode: g.pinMode,
	}
	copy(snap.Places, g.places)
	if g.tempPin != nil {
		pin := *g.tempPin
		snap.TempPin = &pin
	}
	return snap
}
