package client

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ValentinKolb/dPool/lib/fault"
	"github.com/ValentinKolb/dPool/lib/pool"
	"github.com/ValentinKolb/dPool/rpc/common"
	"github.com/ValentinKolb/dPool/rpc/serializer"
	"github.com/ValentinKolb/dPool/rpc/transport"
	"github.com/google/uuid"
)

// StubFactory creates the typed stub S that sends its requests over the given transport
type StubFactory[S any] func(transport transport.IRPCClientTransport, serializer serializer.IRPCSerializer) S

// RPCClient is a pooled client handle. It owns a single transport connection and
// the typed stub S that uses it. A handle is used by one goroutine at a time.
type RPCClient[S any] struct {
	id          uuid.UUID
	kind        string
	config      common.ClientConfig
	transport   transport.IRPCClientTransport
	stub        S
	connectedAt time.Time
}

// compile time check
var _ pool.IPooledClient = (*RPCClient[any])(nil)

// NewRPCClient creates a new handle. The transport is not opened, see Connect.
func NewRPCClient[S any](
	kind string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
	newStub StubFactory[S],
) *RPCClient[S] {
	return &RPCClient[S]{
		id:        uuid.New(),
		kind:      kind,
		config:    config,
		transport: transport,
		stub:      newStub(transport, serializer),
	}
}

// NewFactory returns a pool.Factory that creates handles for the given client kind.
// A port <= 0 passes the address to the transport as is (e.g. a unix socket path).
func NewFactory[S any](
	kind string,
	config common.ClientConfig,
	newTransport transport.ClientTransportFactory,
	serializer serializer.IRPCSerializer,
	newStub StubFactory[S],
) pool.Factory[*RPCClient[S]] {
	return func(address string, port int) (*RPCClient[S], error) {
		if address == "" {
			return nil, fmt.Errorf("no address provided for %s client", kind)
		}
		endpoint := address
		if port > 0 {
			endpoint = net.JoinHostPort(address, strconv.Itoa(port))
		}
		return NewRPCClient(kind, config, newTransport(endpoint, config), serializer, newStub), nil
	}
}

// GetClient returns the typed stub. It must only be used while the handle is checked out.
func (c *RPCClient[S]) GetClient() S {
	return c.stub
}

// ID returns the unique id of the handle, used in log messages
func (c *RPCClient[S]) ID() uuid.UUID {
	return c.id
}

// Kind returns the client kind of the handle
func (c *RPCClient[S]) Kind() string {
	return c.kind
}

// Endpoint returns the address the handle connects to
func (c *RPCClient[S]) Endpoint() string {
	return c.transport.Endpoint()
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pool.IPooledClient)
// --------------------------------------------------------------------------

func (c *RPCClient[S]) Connect() error {
	if c.transport.IsOpen() {
		return nil
	}

	if err := c.transport.Open(); err != nil {
		Logger.Errorf("Failed to connect %s client %s to %s: %v", c.kind, c.id, c.transport.Endpoint(), err)
		// leave no half open transport behind
		if cerr := c.transport.Close(); cerr != nil {
			Logger.Warningf("Failed to close %s client %s: %v", c.kind, c.id, cerr)
		}
		return fault.Connection(c.kind+".Connect", fmt.Sprintf("failed to connect to %s", c.transport.Endpoint()), err)
	}

	c.connectedAt = time.Now()
	return nil
}

func (c *RPCClient[S]) Disconnect() {
	if !c.transport.IsOpen() {
		return
	}
	if err := c.transport.Close(); err != nil {
		Logger.Errorf("Failed to disconnect %s client %s: %v", c.kind, c.id, err)
	}
}

func (c *RPCClient[S]) IsConnected() bool {
	return c.transport.IsOpen()
}

func (c *RPCClient[S]) KeepAlive() {
	if c.transport.IsOpen() {
		return
	}
	// Connect already logs the failure
	_ = c.Connect()
}

func (c *RPCClient[S]) KeepAliveTimeout(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	interval := c.config.KeepAliveRetryInterval()

	for {
		err := c.Connect()
		if err == nil {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fault.Connection(c.kind+".KeepAlive", "keepalive timeout reached", err)
		}
		time.Sleep(min(interval, remaining))
	}
}

func (c *RPCClient[S]) ConnectedAt() time.Time {
	return c.connectedAt
}

func (c *RPCClient[S]) KeepaliveBudget() time.Duration {
	return c.config.KeepaliveBudget()
}
