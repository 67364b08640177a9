package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	FleetPeriod         time.Duration
	SelectionPeriod     time.Duration
	SearchDebounce      time.Duration
	MinQueryLength      int
	LocationConcurrency int
	HistoryWindow       types.HistoryWindow

	// OnSessionLost вызывается, когда бэкенд ответил 401 во время опроса.
	OnSessionLost func()
}

func DefaultOptions() Options {
	return Options{
		FleetPeriod:         5 * time.Second,
		SelectionPeriod:     10 * time.Second,
		SearchDebounce:      DefaultSearchDebounce,
		MinQueryLength:      DefaultMinQueryLength,
		LocationConcurrency: 8,
		HistoryWindow:       types.DefaultHistoryWindow,
	}
}

type Snapshot struct {
	Version    uint64            `json:"version"`
	User       *model.User       `json:"user"`
	ActiveView types.View        `json:"activeView"`
	Fleet      []model.Vehicle   `json:"vehicles"`
	Places     PlacesSnapshot    `json:"places"`
	Selection  SelectionSnapshot `json:"selection"`
	Search     SearchSnapshot    `json:"search"`
	Viewport   ViewportSnapshot  `json:"viewport"`
}

// Console объединяет циклы опроса, выбор транспорта, поиск, карту и
// изменения мест. Все входные точки безопасны для конкурентного вызова.
type Console struct {
	backend source.Backend
	auth    source.Session
	opts    Options

	fetcher  *Fetcher
	session  *Session
	gate     *Gate
	search   *Search
	viewport *Viewport

	fleetLoop     *Poller
	selectionLoop *Poller

	mu   sync.Mutex
	user *model.User
	view types.View

	version     atomic.Uint64
	notifyMu    sync.Mutex
	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSub     int
}

// NewConsole auth может быть nil, тогда Logout не обращается к бэкенду.
func NewConsole(backend source.Backend, auth source.Session, opts Options) *Console {
	defaults := DefaultOptions()
	if opts.FleetPeriod <= 0 {
		opts.FleetPeriod = defaults.FleetPeriod
	}
	if opts.SelectionPeriod <= 0 {
		opts.SelectionPeriod = defaults.SelectionPeriod
	}
	if opts.LocationConcurrency <= 0 {
		opts.LocationConcurrency = defaults.LocationConcurrency
	}
	if !opts.HistoryWindow.IsValid() {
		opts.HistoryWindow = defaults.HistoryWindow
	}

	c := &Console{
		backend:     backend,
		auth:        auth,
		opts:        opts,
		fetcher:     NewFetcher(backend, opts.LocationConcurrency),
		session:     NewSession(opts.HistoryWindow),
		gate:        NewGate(backend),
		viewport:    NewViewport(InitialCenter, InitialZoom),
		view:        types.ViewTracking,
		subscribers: make(map[int]func(Snapshot)),
	}
	c.search = NewSearch(backend, opts.SearchDebounce, opts.MinQueryLength, c.notify)
	c.fleetLoop = NewPoller("fleet", opts.FleetPeriod, c.fleetTick)
	c.selectionLoop = NewPoller("selection", opts.SelectionPeriod, c.selectionTick)
	return c
}

// Start открывает сессию пользователя и запускает опрос парка.
func (c *Console) Start(user model.User) {
	c.mu.Lock()
	c.user = &user
	c.view = types.ViewTracking
	c.gate.SetRole(user.Role)
	c.syncLoopsLocked()
	c.mu.Unlock()

	log.WithFields(log.Fields{"user": user.Username, "role": user.Role}).Info("Сессия консоли открыта")
	c.notify()
}

// syncLoopsLocked приводит циклы в соответствие состоянию: опрос парка
// активен только в режиме слежения, опрос выбора только при выбранном
// транспорте.
func (c *Console) syncLoopsLocked() {
	if c.user != nil && c.view == types.ViewTracking {
		c.fleetLoop.Start()
	} else {
		c.fleetLoop.Stop()
	}

	if _, selected := c.session.Selected(); selected && c.user != nil {
		c.selectionLoop.Start()
	} else {
		c.selectionLoop.Stop()
	}
}

// Logout сбрасывает всё состояние сессии, затем закрывает сессию на бэкенде.
func (c *Console) Logout(ctx context.Context) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	c.resetLocked()
	c.mu.Unlock()
	c.notify()

	log.Info("Сессия консоли закрыта")
	if c.auth == nil {
		return nil
	}
	if err := c.auth.Logout(ctx); err != nil {
		return fmt.Errorf("ошибка выхода: %w", err)
	}
	return nil
}

func (c *Console) resetLocked() {
	c.fleetLoop.Stop()
	c.selectionLoop.Stop()
	c.session.Reset()
	c.fetcher.Reset()
	c.gate.Reset()
	c.search.Clear()
	c.user = nil
	c.view = types.ViewTracking
}

func (c *Console) sessionLost() {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return
	}
	c.resetLocked()
	c.mu.Unlock()

	log.Warn("Сессия истекла, состояние консоли сброшено")
	c.notify()
	if c.opts.OnSessionLost != nil {
		c.opts.OnSessionLost()
	}
}

func (c *Console) checkAuth() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return ErrNotAuthenticated
	}
	return nil
}

// report логирует ошибку тика и сбрасывает сессию при 401.
func (c *Console) report(err error, what string) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	if errors.Is(err, source.ErrUnauthenticated) {
		c.sessionLost()
		return
	}
	log.WithFields(log.Fields{"err": err, "what": what}).Warn("Ошибка опроса")
}

func (c *Console) fleetTick(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		c.report(c.fetcher.RefreshFleet(ctx), "vehicles")
		return nil
	})
	g.Go(func() error {
		c.report(c.gate.RefreshPlaces(ctx), "places")
		return nil
	})
	_ = g.Wait()

	if ctx.Err() == nil {
		c.notify()
	}
}

func (c *Console) selectionTick(ctx context.Context) {
	tag, ok := c.session.Issue()
	if !ok {
		return
	}

	var g errgroup.Group
	g.Go(func() error {
		history, err := c.backend.GetHistory(ctx, tag.VehicleID, tag.Window)
		if ctx.Err() != nil {
			return nil
		}
		_, recenter := c.session.ApplyHistory(tag.History, history, err)
		if recenter != nil {
			c.viewport.Request(recenter.Position(), SelectionZoom)
		}
		c.reportUnauthenticated(err)
		return nil
	})
	g.Go(func() error {
		saved, err := c.backend.GetSavedLocations(ctx, tag.VehicleID)
		if ctx.Err() != nil {
			return nil
		}
		c.session.ApplySaved(tag.Saved, saved, err)
		c.reportUnauthenticated(err)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() == nil {
		c.notify()
	}
}

// Ошибки выборки уже залогированы при применении.
func (c *Console) reportUnauthenticated(err error) {
	if errors.Is(err, source.ErrUnauthenticated) {
		c.sessionLost()
	}
}

func (c *Console) SelectVehicle(vehicleID int32) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if !c.session.Select(vehicleID) {
		c.mu.Unlock()
		return nil
	}
	c.selectionLoop.Restart()
	c.mu.Unlock()

	log.WithField("vehicle_id", vehicleID).Debug("Выбран транспорт")
	c.notify()
	return nil
}

func (c *Console) ClearSelection() {
	c.mu.Lock()
	changed := c.session.Deselect()
	if changed {
		c.selectionLoop.Stop()
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
}

// SetHistoryWindow меняет глубину истории и сразу перезапрашивает трек.
func (c *Console) SetHistoryWindow(window types.HistoryWindow) error {
	if !window.IsValid() {
		return fmt.Errorf("недопустимая глубина истории: %d ч", window.Hours())
	}

	c.mu.Lock()
	changed := c.session.SetWindow(window)
	if changed {
		c.selectionLoop.Trigger()
	}
	c.mu.Unlock()

	if changed {
		c.notify()
	}
	return nil
}

func (c *Console) SetActiveView(view types.View) error {
	if !view.IsValid() {
		return fmt.Errorf("недопустимый режим: %q", view)
	}

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if view == types.ViewAdmin && !c.user.Role.CanAccessAdmin() {
		c.mu.Unlock()
		return ErrAdminNotAllowed
	}
	if view == c.view {
		c.mu.Unlock()
		return nil
	}
	c.view = view
	c.fetcher.Invalidate()
	c.gate.Invalidate()
	c.session.Invalidate()
	c.selectionLoop.Trigger()
	c.syncLoopsLocked()
	c.mu.Unlock()

	log.WithField("view", view).Debug("Режим консоли изменён")
	c.notify()
	return nil
}

func (c *Console) TogglePinMode() (bool, error) {
	if err := c.checkAuth(); err != nil {
		return false, err
	}
	on, err := c.gate.TogglePinMode()
	if err != nil {
		return false, err
	}
	c.notify()
	return on, nil
}

// MapClick передаёт клик по карте в режим установки меток.
func (c *Console) MapClick(ctx context.Context, at types.Position2D, prompt Prompt) (bool, error) {
	if err := c.checkAuth(); err != nil {
		return false, err
	}
	if !c.gate.PinMode() {
		return false, nil
	}
	created, err := c.gate.MapClick(ctx, at, prompt)
	c.notify()
	return created, c.mutationError(err)
}

func (c *Console) mutationError(err error) error {
	if errors.Is(err, source.ErrUnauthenticated) {
		c.sessionLost()
	}
	return err
}

func (c *Console) SubmitSearch(text string) error {
	if err := c.checkAuth(); err != nil {
		return err
	}
	c.search.Submit(text)
	return nil
}

func (c *Console) SelectSearchResult(result model.SearchResult) error {
	if err := c.checkAuth(); err != nil {
		return err
	}
	if !result.Position().IsValid() {
		return ErrInvalidPosition
	}
	c.search.Select(result)
	c.viewport.Request(result.Position(), SearchZoom)
	c.notify()
	return nil
}

func (c *Console) ClearSearch() {
	c.search.Clear()
	c.notify()
}

// SaveSearchMarkerAsPOI сохраняет метку поиска как место интереса. При
// ошибке метка остаётся для повторной попытки.
func (c *Console) SaveSearchMarkerAsPOI(ctx context.Context, name, category, description string) (int32, error) {
	if err := c.checkAuth(); err != nil {
		return 0, err
	}
	marker, ok := c.search.Marker()
	if !ok {
		return 0, ErrNoSearchMarker
	}
	id, err := c.gate.SaveMarker(ctx, marker, name, category, description)
	if err != nil {
		return 0, c.mutationError(err)
	}
	c.search.ClearMarker(marker)
	c.notify()
	return id, nil
}

func (c *Console) UpdatePlace(ctx context.Context, placeID int32, update request.UpdatePlace) error {
	if err := c.checkAuth(); err != nil {
		return err
	}
	err := c.gate.UpdatePlace(ctx, placeID, update)
	c.notify()
	return c.mutationError(err)
}

func (c *Console) DeletePlace(ctx context.Context, placeID int32) error {
	if err := c.checkAuth(); err != nil {
		return err
	}
	err := c.gate.DeletePlace(ctx, placeID)
	c.notify()
	return c.mutationError(err)
}

func (c *Console) selectedVehicle() (int32, error) {
	if err := c.checkAuth(); err != nil {
		return 0, err
	}
	vehicleID, ok := c.session.Selected()
	if !ok {
		return 0, ErrNoSelection
	}
	return vehicleID, nil
}

func (c *Console) UpdateSavedLocation(ctx context.Context, locationID int32, update request.UpdateSavedLocation) error {
	vehicleID, err := c.selectedVehicle()
	if err != nil {
		return err
	}
	if err := c.backend.UpdateSavedLocation(ctx, vehicleID, locationID, update); err != nil {
		return c.mutationError(fmt.Errorf("не удалось изменить сохранённое место %d: %w", locationID, err))
	}
	return c.RefreshSavedLocations(ctx)
}

func (c *Console) DeleteSavedLocation(ctx context.Context, locationID int32) error {
	vehicleID, err := c.selectedVehicle()
	if err != nil {
		return err
	}
	if err := c.backend.DeleteSavedLocation(ctx, vehicleID, locationID); err != nil {
		return c.mutationError(fmt.Errorf("не удалось удалить сохранённое место %d: %w", locationID, err))
	}
	return c.RefreshSavedLocations(ctx)
}

// RefreshSavedLocations внеочередное обновление сохранённых мест.
func (c *Console) RefreshSavedLocations(ctx context.Context) error {
	if err := c.checkAuth(); err != nil {
		return err
	}
	vehicleID, ticket, ok := c.session.IssueSaved()
	if !ok {
		return ErrNoSelection
	}
	saved, err := c.backend.GetSavedLocations(ctx, vehicleID)
	c.session.ApplySaved(ticket, saved, err)
	c.notify()
	if err != nil {
		return c.mutationError(fmt.Errorf("не удалось получить сохранённые места: %w", err))
	}
	return nil
}

func (c *Console) Stats(ctx context.Context) (model.VehicleStats, error) {
	vehicleID, err := c.selectedVehicle()
	if err != nil {
		return model.VehicleStats{}, err
	}
	stats, err := c.backend.GetStats(ctx, vehicleID, c.session.Window())
	if err != nil {
		return model.VehicleStats{}, c.mutationError(err)
	}
	return stats, nil
}

func (c *Console) Export(ctx context.Context, format types.ExportFormat, w io.Writer) error {
	if !format.IsValid() {
		return fmt.Errorf("недопустимый формат выгрузки: %q", format)
	}
	vehicleID, err := c.selectedVehicle()
	if err != nil {
		return err
	}
	return c.mutationError(c.backend.Export(ctx, vehicleID, c.session.Window(), format, w))
}

func (c *Console) UserMovedMap(center types.Position2D, zoom int) error {
	if !center.IsValid() {
		return ErrInvalidPosition
	}
	c.viewport.UserMoved(center, zoom)
	return nil
}

// Fleet текущий список транспорта.
func (c *Console) Fleet() []model.Vehicle {
	return c.fetcher.Vehicles()
}

func (c *Console) User() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.user == nil {
		return nil
	}
	user := *c.user
	return &user
}

func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	var user *model.User
	if c.user != nil {
		u := *c.user
		user = &u
	}
	view := c.view
	c.mu.Unlock()

	return Snapshot{
		Version:    c.version.Load(),
		User:       user,
		ActiveView: view,
		Fleet:      c.fetcher.Vehicles(),
		Places:     c.gate.Snapshot(),
		Selection:  c.session.Snapshot(),
		Search:     c.search.Snapshot(),
		Viewport:   c.viewport.Snapshot(),
	}
}

// Subscribe регистрирует получателя снимков состояния. Получатель вызывается
// из горутин опроса и не должен блокироваться.
func (c *Console) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subscribers, id)
	}
}

// notify выдаёт подписчикам снимки строго по возрастанию версии: номер
// версии и чтение состояния происходят под одной блокировкой.
func (c *Console) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.version.Add(1)

	c.subMu.Lock()
	if len(c.subscribers) == 0 {
		c.subMu.Unlock()
		return
	}
	subscribers := make([]func(Snapshot), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.subMu.Unlock()

	snap := c.Snapshot()
	for _, fn := range subscribers {
		fn(snap)
	}
}

// LoopsActive состояние циклов опроса парка и выбранного транспорта.
func (c *Console) LoopsActive() (fleet bool, selection bool) {
	return c.fleetLoop.Active(), c.selectionLoop.Active()
}

// Close останавливает циклы и дожидается их завершения.
func (c *Console) Close() {
	c.mu.Lock()
	c.fleetLoop.Stop()
	c.selectionLoop.Stop()
	c.mu.Unlock()

	c.search.Close()
	c.fleetLoop.Wait()
	c.selectionLoop.Wait()
}
