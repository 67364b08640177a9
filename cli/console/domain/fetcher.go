package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher владеет списком транспорта с последними координатами.
type Fetcher struct {
	Backend     source.Backend
	Concurrency int

	mu    sync.Mutex
	fleet []model.Vehicle
	guard guard
}

func NewFetcher(backend source.Backend, concurrency int) *Fetcher {
	return &Fetcher{
		Backend:     backend,
		Concurrency: concurrency,
	}
}

// FetchFleet получает список транспорта и параллельно догружает последние
// координаты. Ошибка по одному транспорту не мешает остальным.
func (f *Fetcher) FetchFleet(ctx context.Context) ([]model.Vehicle, error) {
	vehicles, err := f.Backend.GetVehicles(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список транспорта: %w", err)
	}

	fleet := make([]model.Vehicle, len(vehicles))
	var g errgroup.Group
	if f.Concurrency > 0 {
		g.SetLimit(f.Concurrency)
	}
	for i := range vehicles {
		i := i
		vehicle := vehicles[i]
		vehicle.LastLocation = nil
		fleet[i] = vehicle

		g.Go(func() error {
			location, err := f.Backend.GetLastLocation(ctx, vehicle.ID)
			if err != nil {
				entry := log.WithField("vehicle_id", vehicle.ID)
				switch {
				case errors.Is(err, source.ErrNotFound):
					entry.Debug("Нет данных о местоположении")
				case ctx.Err() == nil:
					entry.WithField("err", err).Warn("Не удалось получить последнее местоположение")
				}
				return nil
			}
			fleet[i] = vehicle.WithLocation(location)
			return nil
		})
	}
	_ = g.Wait()

	return fleet, nil
}

// RefreshFleet обновляет список целиком. При ошибке списка сохраняется
// предыдущий.
func (f *Fetcher) RefreshFleet(ctx context.Context) error {
	ticket := f.issue()

	fleet, err := f.FetchFleet(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.guard.accept(ticket) {
		log.WithField("seq", ticket.Seq).Debug("Устаревший список транспорта отброшен")
		return nil
	}
	f.fleet = fleet
	return nil
}

func (f *Fetcher) issue() Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.guard.issue()
}

// Invalidate отбрасывает ответы на уже отправленные запросы.
func (f *Fetcher) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.guard.advance()
}

func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.guard.advance()
	f.fleet = nil
}

func (f *Fetcher) Vehicles() []model.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.Vehicle, len(f.fleet))
	copy(out, f.fleet)
	return out
}

func (f *Fetcher) Vehicle(id int32) (model.Vehicle, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, v := range f.fleet {
		if v.ID == id {
			return v, true
		}
	}
	return model.Vehicle{}, false
}
