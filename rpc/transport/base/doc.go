// Package base provides a foundation for transport layers, implementing the core
// functionality for RPC communication independent of the specific network protocol
// (TCP, Unix sockets). Protocol specific behaviour is injected through connectors.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientTransport: A single synchronous connection. Send writes one frame and reads
//     the matching response frame. Any I/O error, timeout, or a response that does not
//     match the request closes the connection, IsOpen then reports false.
//
//   - serverTransport: Accepts connections and routes every frame to the handler by
//     service id. Close shuts the listener and every open connection.
//
// Frame format (big endian):
//
//	| serviceID uint64 | requestID uint64 | length uint32 | payload |
//
// Thread Safety:
//
//	The client transport serializes Send calls with a mutex, the server processes up to
//	maxWorkersPerConn requests per connection concurrently and serializes the writes.
//	The server uses a sync.Pool to reuse read buffers.
package base
