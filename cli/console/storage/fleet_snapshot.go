package storage

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/domain"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	log "github.com/sirupsen/logrus"
)

var now = time.Now

type FleetSnapshot struct {
	Time     time.Time       `json:"time"`
	Vehicles []model.Vehicle `json:"vehicles"`
}

func (s FleetSnapshot) ToBytes() ([]byte, error) {
	return json.Marshal(s)
}

// FleetPublisher отправляет список транспорта в хранилища, когда он
// меняется.
type FleetPublisher struct {
	queue *AsyncRepository

	mu   sync.Mutex
	last []byte
}

func NewFleetPublisher(queue *AsyncRepository) *FleetPublisher {
	return &FleetPublisher{queue: queue}
}

func (p *FleetPublisher) Handle(snap domain.Snapshot) {
	if snap.User == nil || len(snap.Fleet) == 0 {
		return
	}
	key, err := json.Marshal(snap.Fleet)
	if err != nil {
		log.WithField("err", err).Error("Ошибка сериализации списка транспорта")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if bytes.Equal(key, p.last) {
		return
	}
	if !p.queue.Offer(FleetSnapshot{Time: now().UTC(), Vehicles: snap.Fleet}) {
		log.Warn("Очередь отправки снимков переполнена, снимок пропущен")
		return
	}
	p.last = key
}
