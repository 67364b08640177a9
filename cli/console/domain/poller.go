package domain

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Poller периодический цикл опроса. Первый тик выполняется сразу после
// запуска, тики одного цикла не пересекаются.
type Poller struct {
	name   string
	period time.Duration
	tick   func(ctx context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	trigger chan struct{}
	done    chan struct{}
}

func NewPoller(name string, period time.Duration, tick func(ctx context.Context)) *Poller {
	return &Poller{
		name:   name,
		period: period,
		tick:   tick,
	}
}

func (p *Poller) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return false
	}
	p.startLocked()
	return true
}

// Restart останавливает текущий запуск и начинает новый с немедленным тиком.
// Контекст тика, выполняющегося в момент вызова, отменяется.
func (p *Poller) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.startLocked()
}

// Stop отменяет таймер и контекст текущего тика. Не ждёт завершения
// горутины, поэтому безопасен под чужими блокировками.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stopLocked()
}

// Trigger выполняет внеочередной тик, если цикл активен.
func (p *Poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.trigger == nil {
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.cancel != nil
}

// Wait ждёт выхода горутины последнего запуска. Вызывать после Stop.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (p *Poller) startLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.trigger = make(chan struct{}, 1)
	p.done = make(chan struct{})

	go p.run(ctx, p.trigger, p.done)
	log.WithFields(log.Fields{"loop": p.name, "period": p.period}).Debug("Цикл опроса запущен")
}

func (p *Poller) stopLocked() bool {
	if p.cancel == nil {
		return false
	}
	p.cancel()
	p.cancel = nil
	p.trigger = nil
	log.WithField("loop", p.name).Debug("Цикл опроса остановлен")
	return true
}

func (p *Poller) run(ctx context.Context, trigger <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	t := time.NewTimer(0)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-trigger:
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
		case <-t.C:
		}

		// select выбирает случайно, если готовы оба канала
		if ctx.Err() != nil {
			return
		}
		p.safeTick(ctx)
		t.Reset(p.period)
	}
}

func (p *Poller) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"loop": p.name, "panic": r}).Error("Паника в тике опроса")
		}
	}()
	p.tick(ctx)
}
