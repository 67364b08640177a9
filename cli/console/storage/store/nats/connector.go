package nats

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

servers = "nats://localhost:4222"
subject = "console.fleet"
*/

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

const defaultSubject = "console.fleet"

type Connector struct {
	connection *nats.Conn
	subject    string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	servers := cfg["servers"]
	if servers == "" {
		servers = nats.DefaultURL
	}
	c.subject = cfg["subject"]
	if c.subject == "" {
		c.subject = defaultSubject
	}

	conn, err := nats.Connect(servers, nats.Name("fleet-console"))
	if err != nil {
		return fmt.Errorf("ошибка подключения к NATS: %w", err)
	}
	c.connection = conn
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
	if err := c.connection.Publish(c.subject, data); err != nil {
		return fmt.Errorf("не удалось опубликовать снимок в NATS: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	if err := c.connection.Drain(); err != nil {
		c.connection.Close()
		return err
	}
	return nil
}
