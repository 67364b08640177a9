package postgresql

/*
Настройки, которые могут (а не которые – должны) быть в конфиге для подключения хранилища:

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "console"
schema = "public"
table = "fleet_snapshot"
data_field = "snapshot"
sslmode = "disable"

Поле data_field должно иметь тип json, jsonb или text.
*/

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
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

func connString(cfg map[string]string) string {
	value := func(key, def string) string {
		if v := cfg[key]; v != "" {
			return v
		}
		return def
	}
	return fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
		value("database", "console"), value("host", "localhost"), value("port", "5432"),
		value("user", "postgres"), cfg["password"], value("sslmode", "disable"))
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

	target := pq.QuoteIdentifier(table)
	if schema := cfg["schema"]; schema != "" {
		target = pq.QuoteIdentifier(schema) + "." + target
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1)", target, pq.QuoteIdentifier(field))
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.query = insertQuery(cfg)

	if c.connection, err = sql.Open("postgres", connString(cfg)); err != nil {
		return fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err = c.connection.PingContext(ctx); err != nil {
		_ = c.connection.Close()
		c.connection = nil
		return fmt.Errorf("PostgreSQL недоступен: %w", err)
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
