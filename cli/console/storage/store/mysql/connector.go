package mysql

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

host = "localhost"
port = "3306"
user = "root"
password = ""
database = "console"
table = "fleet_snapshot"
data_field = "snapshot"

Поле data_field должно иметь тип JSON или TEXT.
*/

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	defaultTable     = "fleet_snapshot"
	defaultDataField = "snapshot"
	opTimeout        = 5 * time.Second
)

type Connector struct {
	connection *sql.DB
	query      string
}

func driverConfig(cfg map[string]string) *mysql.Config {
	value := func(key, def string) string {
		if v := cfg[key]; v != "" {
			return v
		}
		return def
	}

	dc := mysql.NewConfig()
	dc.User = value("user", "root")
	dc.Passwd = cfg["password"]
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(value("host", "localhost"), value("port", "3306"))
	dc.DBName = value("database", "console")
	dc.Timeout = opTimeout
	return dc
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func insertQuery(cfg map[string]string) string {
	table := cfg["table"]
	if table == "" {
		table = defaultTable
	}
	field := cfg["data_field"]
	if field == "" {
		field = defaultDataField
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", quote(table), quote(field))
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.query = insertQuery(cfg)

	connector, err := mysql.NewConnector(driverConfig(cfg))
	if err != nil {
		return fmt.Errorf("некорректные настройки MySQL: %w", err)
	}
	c.connection = sql.OpenDB(connector)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err = c.connection.PingContext(ctx); err != nil {
		_ = c.connection.Close()
		c.connection = nil
		return fmt.Errorf("MySQL недоступен: %w", err)
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
	if _, err = c.connection.ExecContext(ctx, c.query, string(data)); err != nil {
		return fmt.Errorf("не удалось вставить снимок: %w", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if c.connection == nil {
		return nil
	}
	return c.connection.Close()
}
