package storage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage/store/mysql"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage/store/nats"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage/store/postgresql"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage/store/rabbitmq"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage/store/redis"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage/store/tarantool_queue"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidStorage = errors.New("storage not found")
var ErrUnknownStorage = errors.New("storage isn't support yet")

// Payload данные, которые хранилище умеет сериализовать.
type Payload = interface{ ToBytes() ([]byte, error) }

type Store interface {
	Connector
	Saver
}

// Saver интерфейс для отправки снимков во внешние хранилища
type Saver interface {
	Save(Payload) error
}

// Connector интерфейс для подключения внешних хранилищ
type Connector interface {
	// Init установка соединения с хранилищем
	Init(map[string]string) error

	// Close закрытие соединения с хранилищем
	Close() error
}

// Repository набор выходных хранилищ
type Repository struct {
	storages []Saver
	closers  []Connector
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) AddStore(s Saver) {
	r.storages = append(r.storages, s)
	if c, ok := s.(Connector); ok {
		r.closers = append(r.closers, c)
	}
}

func (r *Repository) Len() int {
	return len(r.storages)
}

// Save отправляет данные во все хранилища. Ошибка одного хранилища не мешает
// остальным.
func (r *Repository) Save(m Payload) error {
	var errs []error
	for _, store := range r.storages {
		if err := store.Save(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadStorages загружает хранилища из структуры конфига
func (r *Repository) LoadStorages(storages map[string]map[string]string) error {
	if len(storages) == 0 {
		return ErrInvalidStorage
	}

	names := make([]string, 0, len(storages))
	for name := range storages {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var db Store
		switch name {
		case "redis":
			db = &redis.Connector{}
		case "nats":
			db = &nats.Connector{}
		case "rabbitmq":
			db = &rabbitmq.Connector{}
		case "postgresql":
			db = &postgresql.Connector{}
		case "mysql":
			db = &mysql.Connector{}
		case "tarantool_queue":
			db = &tarantool_queue.Connector{}
		default:
			return fmt.Errorf("%s: %w", name, ErrUnknownStorage)
		}

		if err := db.Init(storages[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.WithField("storage", name).Info("Хранилище подключено")

		r.AddStore(db)
	}
	return nil
}

func (r *Repository) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
