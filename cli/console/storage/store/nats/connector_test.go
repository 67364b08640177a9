package nats

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload string

func (p payload) ToBytes() ([]byte, error) {
	return []byte(p), nil
}

func runServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go srv.Start()
	t.Cleanup(srv.Shutdown)

	require.True(t, srv.ReadyForConnections(5*time.Second), "NATS не запустился")
	return srv
}

func TestConnector_Save(t *testing.T) {
	srv := runServer(t)

	sub, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	messages := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("fleet.test", messages)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	c := &Connector{}
	require.NoError(t, c.Init(map[string]string{"servers": srv.ClientURL(), "subject": "fleet.test"}))

	require.NoError(t, c.Save(payload(`{"vehicles":[]}`)))
	require.NoError(t, c.connection.Flush())

	select {
	case msg := <-messages:
		assert.Equal(t, `{"vehicles":[]}`, string(msg.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("снимок не доставлен")
	}

	assert.NoError(t, c.Close())
}

func TestConnector_Init(t *testing.T) {
	c := &Connector{}
	assert.Error(t, c.Init(nil))
	assert.NoError(t, c.Close())

	srv := runServer(t)
	require.NoError(t, c.Init(map[string]string{"servers": srv.ClientURL()}))
	assert.Equal(t, defaultSubject, c.subject)
	assert.NoError(t, c.Close())
}
