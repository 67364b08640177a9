package rabbitmq

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "console"
exchange_type = "fanout"
key = "fleet"
*/

import (
	"fmt"
	"net"
	"net/url"

	"github.com/streadway/amqp"
)

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	key        string
}

func dsn(cfg map[string]string) string {
	host := cfg["host"]
	if host == "" {
		host = "localhost"
	}
	port := cfg["port"]
	if port == "" {
		port = "5672"
	}
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg["user"], cfg["password"]),
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + cfg["vhost"],
	}
	return u.String()
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.exchange = cfg["exchange"]
	if c.exchange == "" {
		return fmt.Errorf("не задан exchange для RabbitMQ")
	}
	kind := cfg["exchange_type"]
	if kind == "" {
		kind = amqp.ExchangeFanout
	}
	c.key = cfg["key"]

	if c.connection, err = amqp.Dial(dsn(cfg)); err != nil {
		return fmt.Errorf("ошибка подключения к RabbitMQ: %w", err)
	}
	if c.channel, err = c.connection.Channel(); err != nil {
		_ = c.connection.Close()
		return fmt.Errorf("ошибка открытия канала RabbitMQ: %w", err)
	}
	if err = c.channel.ExchangeDeclare(c.exchange, kind, true, false, false, false, nil); err != nil {
		_ = c.Close()
		return fmt.Errorf("ошибка объявления exchange %s: %w", c.exchange, err)
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

	err = c.channel.Publish(c.exchange, c.key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        data,
	})
	if err != nil {
		return fmt.Errorf("не удалось отправить снимок в RabbitMQ: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
