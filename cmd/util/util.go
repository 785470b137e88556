package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/ValentinKolb/dPool/lib/pool"
	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/serializer"
	"github.com/ValentinKolb/dPool/rpc/transport"
	"github.com/ValentinKolb/dPool/rpc/transport/tcp"
	"github.com/ValentinKolb/dPool/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}

	if line.Len() > 0 {
		wrappedLines = append(wrappedLines, line.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupTransportFlags adds the socket option flags shared by clients and servers
func SetupTransportFlags(cmd *cobra.Command) {
	key := "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the socket write buffer (in KB, 0 keeps the OS default)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 512, WrapString("The size of the socket read buffer (in KB, 0 keeps the OS default)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (tcp only)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The TCP keepalive period (in seconds, 0 disables it, tcp only)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time (in seconds, negative keeps the OS default, tcp only)"))
}

// SetupPoolFlags adds the client pool and retry flags to a command
func SetupPoolFlags(cmd *cobra.Command) {
	key := "address"
	cmd.PersistentFlags().String(key, "localhost", WrapString("The address of the compose-review service (host or unix socket path)"))

	key = "port"
	cmd.PersistentFlags().Int(key, 9090, WrapString("The port of the compose-review service (0 to use the address as is, e.g. for unix sockets)"))

	key = "service-id"
	cmd.PersistentFlags().Uint64(key, common.ServiceIDComposeReview, WrapString("The service id of the compose-review service on the server"))

	key = "pool-min"
	cmd.PersistentFlags().Int(key, 2, WrapString("Number of client handles created with the pool"))

	key = "pool-max"
	cmd.PersistentFlags().Int(key, 16, WrapString("Maximum number of client handles of the pool"))

	key = "pool-timeout-ms"
	cmd.PersistentFlags().Int(key, 1000, WrapString("How long to wait for a free client handle (in ms)"))

	key = "keepalive-ms"
	cmd.PersistentFlags().Int(key, 60000, WrapString("How long a connection may be reused before it is closed on release (in ms, 0 disables it)"))

	key = "connect-retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("Connect attempts before a client handle is replaced"))

	key = "connect-retry-interval-ms"
	cmd.PersistentFlags().Int(key, 1000, WrapString("Pause of the pool after a failed connect attempt (in ms)"))

	key = "keepalive-retry-interval-ms"
	cmd.PersistentFlags().Int(key, 100, WrapString("Pause between reconnect attempts when a client is handed back with a timeout (in ms)"))

	key = "connect-timeout-ms"
	cmd.PersistentFlags().Int(key, 1000, WrapString("Timeout of a single connect attempt (in ms, 0 disables it)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The send/receive timeout of a request (in seconds)"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times a request is attempted on transport errors"))

	SetupTransportFlags(cmd)
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dpool")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetTransportConfig reads the socket options from viper
func GetTransportConfig() common.TransportConfig {
	return common.TransportConfig{
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		},
	}
}

// GetClientConfig reads the configuration of a single client handle from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		TimeoutSecond:    viper.GetInt("timeout"),
		ConnectTimeoutMs: viper.GetInt("connect-timeout-ms"),
		KeepaliveMs:      viper.GetInt("keepalive-ms"),
		KeepAliveRetryMs: viper.GetInt("keepalive-retry-interval-ms"),
		Transport:        GetTransportConfig(),
	}
}

// GetPoolConfig reads the pool configuration for the given client kind from viper
func GetPoolConfig(kind string) pool.Config {
	return pool.Config{
		ClientKind:           kind,
		Address:              viper.GetString("address"),
		Port:                 viper.GetInt("port"),
		MinSize:              viper.GetInt("pool-min"),
		MaxSize:              viper.GetInt("pool-max"),
		AcquireTimeout:       time.Duration(viper.GetInt("pool-timeout-ms")) * time.Millisecond,
		ConnectRetries:       viper.GetInt("connect-retries"),
		ConnectRetryInterval: time.Duration(viper.GetInt("connect-retry-interval-ms")) * time.Millisecond,
	}
}

// GetRetries returns the number of attempts per request
func GetRetries() int {
	return viper.GetInt("retries")
}

// GetServiceID returns the configured service id
func GetServiceID() uint64 {
	return viper.GetUint64("service-id")
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	name := viper.GetString("serializer")
	s, ok := serializer.ByName(name)
	if !ok {
		return nil, fmt.Errorf("invalid serializer %s", name)
	}
	return s, nil
}

// GetTransportFactory returns the client transport constructor based on configuration
func GetTransportFactory() (transport.ClientTransportFactory, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPClientTransport, nil
	case "unix":
		return unix.NewUnixClientTransport, nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerTransport creates a server transport based on configuration
func GetServerTransport(workersPerConn int) (transport.IRPCServerTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPServerTransport(512*1024, workersPerConn), nil
	case "unix":
		return unix.NewUnixServerTransport(64*1024, workersPerConn), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
