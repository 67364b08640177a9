package tarantool_queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/vmihailenco/msgpack.v2"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		cfg     map[string]string
		wantErr bool
		timeout time.Duration
		recons  uint
	}{
		{"defaults", map[string]string{}, false, time.Second, 5},
		{"custom", map[string]string{"timeout": "3", "max_recons": "10"}, false, 3 * time.Second, 10},
		{"bad timeout", map[string]string{"timeout": "soon"}, true, 0, 0},
		{"negative reconnect", map[string]string{"reconnect": "-1"}, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := options(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.timeout, opts.Timeout)
			assert.Equal(t, tt.recons, opts.MaxReconnects)
		})
	}
}

func TestEncode(t *testing.T) {
	data := []byte(`{"time":"2024-05-01T10:00:00Z","vehicles":[{"id":1,"name":"Truck 1"}]}`)

	same, err := encode(data, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, data, same)

	packed, err := encode(data, FormatMsgpack)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(packed, &doc))
	assert.Equal(t, "2024-05-01T10:00:00Z", doc["time"])
	assert.Len(t, doc["vehicles"], 1)

	_, err = encode([]byte("not json"), FormatMsgpack)
	assert.Error(t, err)
}

func TestConnector_InitValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]string
	}{
		{"nil config", nil},
		{"unknown format", map[string]string{"format": "xml"}},
		{"bad max_recons", map[string]string{"max_recons": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Connector{}
			assert.Error(t, c.Init(tt.cfg))
			assert.NoError(t, c.Close())
		})
	}
}
