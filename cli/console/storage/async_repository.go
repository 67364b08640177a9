package storage

import (
	"context"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
)

type AsyncRepository struct {
	repo   Saver
	ch     chan Payload
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func NewAsyncRepository(repo Saver, buffer, workers int) *AsyncRepository {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ar := &AsyncRepository{
		repo:   repo,
		ch:     make(chan Payload, buffer),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		ar.wg.Add(1)
		go ar.worker()
	}
	return ar
}

func (a *AsyncRepository) worker() {
	defer a.wg.Done()
	for {
		select {
		case msg := <-a.ch:
			if err := a.repo.Save(msg); err != nil {
				log.WithField("err", err).Error("Ошибка отправки снимка")
			}
		case <-a.ctx.Done():
			return
		}
	}
}

// Offer ставит данные в очередь без ожидания. Возвращает false, если очередь
// заполнена или репозиторий закрыт.
func (a *AsyncRepository) Offer(m Payload) bool {
	if a.ctx.Err() != nil {
		return false
	}
	select {
	case a.ch <- m:
		return true
	default:
		return false
	}
}

func (a *AsyncRepository) Close() {
	a.once.Do(func() {
		a.cancel()
		a.wg.Wait()
	})
}
