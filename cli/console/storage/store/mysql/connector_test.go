package mysql

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
		{"defaults", map[string]string{}, "INSERT INTO `fleet_snapshot` (`snapshot`) VALUES (?)"},
		{"custom", map[string]string{"table": "points", "data_field": "payload"}, "INSERT INTO `points` (`payload`) VALUES (?)"},
		{"quoted", map[string]string{"table": "bad`name"}, "INSERT INTO `bad``name` (`snapshot`) VALUES (?)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, insertQuery(tt.cfg))
		})
	}
}

func TestDriverConfig(t *testing.T) {
	dc := driverConfig(map[string]string{"host": "db", "user": "ops", "password": "secret", "database": "tracker"})

	assert.Equal(t, "tcp", dc.Net)
	assert.Equal(t, "db:3306", dc.Addr)
	assert.Equal(t, "ops", dc.User)
	assert.Equal(t, "tracker", dc.DBName)
	assert.Contains(t, dc.FormatDSN(), "ops:secret@tcp(db:3306)/tracker")
}

func TestConnector_InitRejectsNilConfig(t *testing.T) {
	c := &Connector{}
	assert.Error(t, c.Init(nil))
	assert.NoError(t, c.Close())
}
