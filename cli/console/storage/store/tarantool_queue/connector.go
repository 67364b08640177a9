package tarantool_queue

/*
Плагин для работы с Tarantool queue.

Раздел настроек, которые могут быть в конфиге для подключения хранилища:

host = "localhost"
port = "3301"
user = "user"
password = "pass"
max_recons = 5
timeout = 1
reconnect = 1
queue = "fleet"
format = "json" (или "msgpack")
*/

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/tarantool/go-tarantool"
	"github.com/tarantool/go-tarantool/queue"
	"gopkg.in/vmihailenco/msgpack.v2"
)

const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"

	defaultQueue = "fleet"
)

type Connector struct {
	connection *tarantool.Connection
	queue      queue.Queue
	format     string
}

func intOption(cfg map[string]string, key string, def int) (int, error) {
	v := cfg[key]
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("не удалось получить %s: %q", key, v)
	}
	return n, nil
}

func options(cfg map[string]string) (tarantool.Opts, error) {
	maxRecons, err := intOption(cfg, "max_recons", 5)
	if err != nil {
		return tarantool.Opts{}, err
	}
	timeout, err := intOption(cfg, "timeout", 1)
	if err != nil {
		return tarantool.Opts{}, err
	}
	reconnect, err := intOption(cfg, "reconnect", 1)
	if err != nil {
		return tarantool.Opts{}, err
	}
	return tarantool.Opts{
		Timeout:       time.Duration(timeout) * time.Second,
		Reconnect:     time.Duration(reconnect) * time.Second,
		MaxReconnects: uint(maxRecons),
		User:          cfg["user"],
		Pass:          cfg["password"],
	}, nil
}

// encode перекодирует JSON снимка в формат очереди.
func encode(data []byte, format string) ([]byte, error) {
	if format != FormatMsgpack {
		return data, nil
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return msgpack.Marshal(doc)
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}

	c.format = cfg["format"]
	if c.format == "" {
		c.format = FormatJSON
	}
	if c.format != FormatJSON && c.format != FormatMsgpack {
		return fmt.Errorf("неизвестный формат очереди %q", c.format)
	}

	opts, err := options(cfg)
	if err != nil {
		return err
	}

	host := cfg["host"]
	if host == "" {
		host = "localhost"
	}
	port := cfg["port"]
	if port == "" {
		port = "3301"
	}
	name := cfg["queue"]
	if name == "" {
		name = defaultQueue
	}

	c.connection, err = tarantool.Connect(net.JoinHostPort(host, port), opts)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к Tarantool: %w", err)
	}
	c.queue = queue.New(c.connection, name)
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
	if data, err = encode(data, c.format); err != nil {
		return fmt.Errorf("ошибка кодирования снимка в %s: %w", c.format, err)
	}

	if _, err = c.queue.Put(data); err != nil {
		return fmt.Errorf("не удалось отправить снимок в очередь: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
