package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Transport configuration (shared by client and server)
// --------------------------------------------------------------------------

// SocketConf holds socket buffer sizes in bytes. Zero keeps the OS default.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay bool
	// TCPKeepAliveSec enables TCP keepalive probes with the given period (0 disables them)
	TCPKeepAliveSec int
	// TCPLingerSec sets SO_LINGER, a negative value keeps the OS default
	TCPLingerSec int
}

// TransportConfig groups the socket options applied to every connection
type TransportConfig struct {
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

type ServiceType string

const (
	ServiceTypeComposeReview ServiceType = "compose-review"
)

// ServiceIDComposeReview is the default service id of the compose-review service
const ServiceIDComposeReview uint64 = 100

// ServerService binds a service implementation to a service id
type ServerService struct {
	ServiceID uint64
	Type      ServiceType
}

// ServerConfig holds all configuration parameters of an RPC server
type ServerConfig struct {
	Services []ServerService

	// Endpoint is the address the RPC transport listens on (host:port or a unix socket path)
	Endpoint string
	// AdminEndpoint is the address of the HTTP admin server (metrics, health), empty disables it
	AdminEndpoint string

	// TimeoutSecond is the write timeout per response (0 disables it).
	// Reads have no deadline, idle pooled connections stay open.
	TimeoutSecond int64
	// WorkersPerConn limits the number of requests processed concurrently per connection
	WorkersPerConn int

	Transport TransportConfig

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Admin Endpoint", c.AdminEndpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Workers Per Conn", strconv.Itoa(c.WorkersPerConn))

	addSection("Transport")
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keepalive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Services")
	for _, service := range c.Services {
		addField(strconv.FormatUint(service.ServiceID, 10), string(service.Type))
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig configures a single pooled RPC client handle
type ClientConfig struct {
	// TimeoutSecond is the send/receive timeout per request (0 disables it)
	TimeoutSecond int
	// ConnectTimeoutMs bounds a single connection attempt (0 disables it)
	ConnectTimeoutMs int
	// KeepaliveMs is how long a connection may be reused before it is discarded on release (0 disables it)
	KeepaliveMs int
	// KeepAliveRetryMs is the pause between connection attempts of KeepAliveTimeout
	KeepAliveRetryMs int

	Transport TransportConfig
}

// Timeout returns the send/receive timeout as a time.Duration
func (c *ClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// ConnectTimeout returns the connect timeout as a time.Duration
func (c *ClientConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

// KeepaliveBudget returns the keepalive budget as a time.Duration
func (c *ClientConfig) KeepaliveBudget() time.Duration {
	return time.Duration(c.KeepaliveMs) * time.Millisecond
}

// KeepAliveRetryInterval returns the reconnect interval of KeepAliveTimeout, 100ms if unset
func (c *ClientConfig) KeepAliveRetryInterval() time.Duration {
	if c.KeepAliveRetryMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.KeepAliveRetryMs) * time.Millisecond
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Connect Timeout", fmt.Sprintf("%d ms", c.ConnectTimeoutMs))
	addField("Keepalive Budget", fmt.Sprintf("%d ms", c.KeepaliveMs))
	addField("Keepalive Retry", c.KeepAliveRetryInterval().String())

	addSection("Transport")
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keepalive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	return sb.String()
}
