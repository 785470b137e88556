package transport

import (
	"errors"
	"net"

	"github.com/ValentinKolb/dPool/rpc/common"
)

// ErrNotOpen is returned by Send if the transport has no open connection
var ErrNotOpen = errors.New("transport is not open")

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes a serviceID and a request as parameters and returns a response
type ServerHandleFunc func(serviceID uint64, req []byte) (resp []byte)

// IRPCServerTransport is the interface for the RPC transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called for every request frame, the transport does not interpret the service id
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the listener described by the config, it does not accept connections yet
	Listen(config common.ServerConfig) error
	// Serve accepts connections until Close is called. It returns nil after Close.
	Serve() error
	// Addr returns the address of the listener, nil before Listen
	Addr() net.Addr
	// Close stops accepting connections and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the RPC client transport.
// A client transport owns at most one connection and is not safe for concurrent Send calls
// from different owners, the pool guarantees exclusive use.
type IRPCClientTransport interface {
	// Open establishes the connection, an open transport is closed first
	Open() error
	// IsOpen reports whether the transport holds an open connection
	IsOpen() bool
	// Send sends a request to the server and returns the response.
	// Any I/O error closes the connection.
	Send(serviceID uint64, req []byte) (resp []byte, err error)
	// Close closes the transport connection, closing a closed transport is a no-op
	Close() error
	// Endpoint returns the address the transport connects to
	Endpoint() string
}

// ClientTransportFactory creates an unopened client transport for an endpoint
type ClientTransportFactory func(endpoint string, config common.ClientConfig) IRPCClientTransport
