package redis

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

server = "localhost:6379"
password = ""
db = "0"
key = "console:fleet"
channel = "console:fleet"
*/

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	defaultKey     = "console:fleet"
	defaultChannel = "console:fleet"
	opTimeout      = 5 * time.Second
)

// Connector хранит последний снимок по ключу и публикует его в канал.
type Connector struct {
	client  *redis.Client
	key     string
	channel string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}

	db := 0
	if v := cfg["db"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("некорректный номер базы redis %q: %w", v, err)
		}
		db = n
	}

	c.key = cfg["key"]
	if c.key == "" {
		c.key = defaultKey
	}
	c.channel = cfg["channel"]
	if c.channel == "" {
		c.channel = defaultChannel
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:     cfg["server"],
		Password: cfg["password"],
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis недоступен: %w", err)
	}
	return nil
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("некорректная ссылка на снимок")
	}
	data, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("ошибка сериализации снимка: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("не удалось записать снимок в redis: %w", err)
	}
	if err := c.client.Publish(ctx, c.channel, data).Err(); err != nil {
		return fmt.Errorf("не удалось опубликовать снимок в redis: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
