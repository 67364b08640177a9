package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertQuery(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
		want string
	}{
		{"defaults", map[string]string{}, `INSERT INTO "fleet_snapshot" ("snapshot") VALUES ($1)`},
		{"schema", map[string]string{"schema": "console", "table": "fleet"}, `INSERT INTO "console"."fleet" ("snapshot") VALUES ($1)`},
		{"field", map[string]string{"table": "points", "data_field": "payload"}, `INSERT INTO "points" ("payload") VALUES ($1)`},
		{"quoted", map[string]string{"table": `bad"name`}, `INSERT INTO "bad""name" ("snapshot") VALUES ($1)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insertQuery(tt.cfg))
		})
	}
}

func TestConnString(t *testing.T) {
	assert.Equal(t,
		"dbname=console host=localhost port=5432 user=postgres password= sslmode=disable",
		connString(map[string]string{}))
	assert.Equal(t,
		"dbname=tracker host=db port=6432 user=ops password=secret sslmode=require",
		connString(map[string]string{
			"database": "tracker", "host": "db", "port": "6432",
			"user": "ops", "password": "secret", "sslmode": "require",
		}))
}

func TestConnector_InitRejectsNilConfig(t *testing.T) {
	c := &Connector{}
	assert.Error(t, c.Init(nil))
	assert.NoError(t, c.Close())
}
