package util

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestPoolFlagsToConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	SetupPoolFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--pool-min=1", "--pool-max=3", "--pool-timeout-ms=250", "--port=0", "--address=/tmp/dpool.sock"}))
	require.NoError(t, BindCommandFlags(cmd))

	config := GetPoolConfig("compose-review")
	assert.Equal(t, "compose-review", config.ClientKind)
	assert.Equal(t, 1, config.MinSize)
	assert.Equal(t, 3, config.MaxSize)
	assert.Equal(t, 250*time.Millisecond, config.AcquireTimeout)
	assert.Equal(t, "/tmp/dpool.sock", config.Endpoint())
	assert.Equal(t, 3, GetRetries())

	clientConfig := GetClientConfig()
	assert.Equal(t, 10, clientConfig.TimeoutSecond)
	assert.Equal(t, 512*1024, clientConfig.Transport.WriteBufferSize)
	assert.Equal(t, -1, clientConfig.Transport.TCPLingerSec)
}

func TestPoolFlagDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	SetupPoolFlags(cmd)
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, BindCommandFlags(cmd))

	config := GetPoolConfig("compose-review")
	assert.Equal(t, 3, config.ConnectRetries)
	assert.Equal(t, time.Second, config.ConnectRetryInterval)

	// the reconnect loop of a handle has its own interval
	clientConfig := GetClientConfig()
	assert.Equal(t, 100*time.Millisecond, clientConfig.KeepAliveRetryInterval())
}

func TestRetryIntervalFlagsAreIndependent(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := &cobra.Command{Use: "test"}
	SetupPoolFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--keepalive-retry-interval-ms=20"}))
	require.NoError(t, BindCommandFlags(cmd))

	assert.Equal(t, time.Second, GetPoolConfig("compose-review").ConnectRetryInterval)
	assert.Equal(t, 20*time.Millisecond, GetClientConfig().KeepAliveRetryInterval())
}

func TestSerializerAndTransportSelection(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("serializer", "gob")
	viper.Set("transport", "unix")
	_, err := GetSerializer()
	assert.NoError(t, err)
	_, err = GetTransportFactory()
	assert.NoError(t, err)

	viper.Set("serializer", "xml")
	viper.Set("transport", "http")
	_, err = GetSerializer()
	assert.Error(t, err)
	_, err = GetTransportFactory()
	assert.Error(t, err)
	_, err = GetServerTransport(1)
	assert.Error(t, err)
}
