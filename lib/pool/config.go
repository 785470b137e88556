package pool

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	defaultConnectRetries       = 3
	defaultConnectRetryInterval = time.Second
)

// Config holds the immutable parameters of a ClientPool
type Config struct {
	// ClientKind names the downstream service (e.g. "compose-review"). Only used for logs and metrics.
	ClientKind string
	Address    string
	Port       int

	MinSize int
	MaxSize int

	// AcquireTimeout bounds how long Pop waits for a handle when the pool is at capacity
	AcquireTimeout time.Duration

	// ConnectRetries is the number of Connect attempts before a handle is replaced (default 3)
	ConnectRetries int
	// ConnectRetryInterval is the pause after each failed Connect attempt (default 1s)
	ConnectRetryInterval time.Duration
}

// validate checks the sizing parameters
func (c Config) validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("invalid pool config: max size must be > 0, got %d", c.MaxSize)
	}
	if c.MinSize < 0 || c.MinSize > c.MaxSize {
		return fmt.Errorf("invalid pool config: min size must be between 0 and %d, got %d", c.MaxSize, c.MinSize)
	}
	if c.AcquireTimeout <= 0 {
		return fmt.Errorf("invalid pool config: acquire timeout must be > 0, got %s", c.AcquireTimeout)
	}
	if c.ConnectRetries < 0 {
		return fmt.Errorf("invalid pool config: connect retries must be >= 0, got %d", c.ConnectRetries)
	}
	return nil
}

// withDefaults returns a copy of the config with defaults applied to unset fields
func (c Config) withDefaults() Config {
	if c.ConnectRetries == 0 {
		c.ConnectRetries = defaultConnectRetries
	}
	if c.ConnectRetryInterval <= 0 {
		c.ConnectRetryInterval = defaultConnectRetryInterval
	}
	if c.ClientKind == "" {
		c.ClientKind = "client"
	}
	return c
}

// Endpoint returns the address and port in host:port form
func (c Config) Endpoint() string {
	if c.Port <= 0 {
		return c.Address
	}
	return net.JoinHostPort(c.Address, strconv.Itoa(c.Port))
}

// String returns a formatted string representation of the pool configuration
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Pool")
	addField("Client", c.ClientKind)
	addField("Endpoint", c.Endpoint())
	addField("Min Size", strconv.Itoa(c.MinSize))
	addField("Max Size", strconv.Itoa(c.MaxSize))
	addField("Acquire Timeout", c.AcquireTimeout.String())
	addField("Connect Retries", strconv.Itoa(c.ConnectRetries))
	addField("Connect Retry Interval", c.ConnectRetryInterval.String())

	return sb.String()
}
