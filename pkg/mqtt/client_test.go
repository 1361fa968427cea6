package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClientOptions(t *testing.T) {
	opts := withDefaults(Options{Broker: "tcp://broker.local:1883", Username: "cb", Password: "secret"})
	co := buildClientOptions(opts)

	require.Len(t, co.Servers, 1)
	assert.Equal(t, "broker.local:1883", co.Servers[0].Host)
	assert.Equal(t, "cellbroadcast-api", co.ClientID)
	assert.Equal(t, "cb", co.Username)
	assert.True(t, co.AutoReconnect)
	assert.True(t, co.CleanSession)
	assert.Equal(t, 10*time.Second, co.ConnectTimeout)
}

func TestNewClientRequiresBroker(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
}

func TestNewClientUnreachableBroker(t *testing.T) {
	_, err := NewClient(Options{Broker: "tcp://127.0.0.1:1", ConnectTimeout: 500 * time.Millisecond})
	assert.Error(t, err)
}
