package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	vars := map[string]string{
		"SOFTUART_BAUD":       "19200",
		"SOFTUART_BUFFER":     "128",
		"SOFTUART_TICK_RATE":  "1000000",
		"SOFTUART_BRIDGE_URL": "tcp://localhost:7000",
		"SOFTUART_ID":         "bench-1",
		"SOFTUART_MQTT_URL":   "mqtt://localhost:1883/lab/",
	}
	for k, v := range vars {
		require.NoError(t, os.Setenv(k, v))
		defer os.Unsetenv(k)
	}
	var conf Config
	require.NoError(t, conf.LoadEnv())
	require.Equal(t, 19200, conf.Port.Baud)
	require.Equal(t, 128, conf.Port.BufferSize)
	require.Equal(t, uint(1000000), conf.TickRate)
	require.Equal(t, "tcp://localhost:7000", conf.BridgeURL)
	require.Equal(t, "bench-1", conf.ID)
	require.Equal(t, "mqtt://localhost:1883/lab/", conf.MQTTURL)
}

func TestLoadEnvInvalid(t *testing.T) {
	for _, name := range []string{"SOFTUART_BAUD", "SOFTUART_BUFFER", "SOFTUART_TICK_RATE"} {
		require.NoError(t, os.Setenv(name, "fast"))
		var conf Config
		require.Error(t, conf.LoadEnv(), name)
		os.Unsetenv(name)
	}
}

func TestNewConfigIsACopy(t *testing.T) {
	conf := NewConfig()
	conf.Port.Baud = 1
	require.NotEqual(t, 1, Default().Port.Baud)
	require.NotEmpty(t, conf.ID)
	require.True(t, conf.Diag.Debug)
}
