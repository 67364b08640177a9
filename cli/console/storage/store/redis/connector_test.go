package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnector_InitValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
	}{
		{"nil config", nil},
		{"bad db", map[string]string{"server": "127.0.0.1:6379", "db": "first"}},
		{"unreachable", map[string]string{"server": "127.0.0.1:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Connector{}
			assert.Error(t, c.Init(tt.cfg))
			assert.NoError(t, c.Close())
		})
	}
}

func TestConnector_InitDefaults(t *testing.T) {
	c := &Connector{}
	_ = c.Init(map[string]string{"server": "127.0.0.1:1"})
	defer c.Close()

	assert.Equal(t, defaultKey, c.key)
	assert.Equal(t, defaultChannel, c.channel)
}
