// Package tcp implements TCP socket-based transport for the pooled RPC clients.
// It provides concrete implementations of the base package's connector
// interfaces optimized for TCP connections.
//
// Socket options (TCP_NODELAY, keepalive probes, linger, buffer sizes) are taken from
// common.TransportConfig and applied to both dialed and accepted connections.
//
// The default server buffer size is set to 512 KB, which provides good performance
// for typical workloads, but can be customized for specific use cases.
package tcp
