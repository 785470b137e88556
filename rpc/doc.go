// Package rpc provides the remote procedure call layer used by the pooled clients.
// A pooled client handle owns exactly one transport connection, the server side
// hosts the compose-review service the handles talk to.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets). Every client transport is a single synchronous connection.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: The RPCClient handle that satisfies pool.IPooledClient, plus the typed
//     compose-review stub that is used through it.
//
//   - server: RPC server components that host services on a transport, the compose-review
//     adapter, and the HTTP admin server exposing metrics.
package rpc
