// Package transport defines the interfaces and abstractions for RPC communication
// between pooled client handles and the services they call. It provides a common
// contract that all transport implementations must fulfill.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for a single client connection. Open, IsOpen and
//     Close map directly onto the connection lifecycle of a pooled client handle.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and routes them to a handler by service id.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// Errors returned by IRPCClientTransport.Send are transport faults, the caller must
// treat the connection as broken. Errors reported inside a response payload are not
// the concern of this package.
package transport
