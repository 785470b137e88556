// Package common provides core data structures and utilities shared across
// the RPC clients, the server, and the pool. It defines fundamental types,
// configuration structures, and protocol elements used by other packages.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating the compose-review requests and responses.
//
//   - MessageType: Enumeration of all supported operation types.
//
//   - ErrorCode and ServiceError: Error classification reported by services. A response
//     carrying an error code is an application fault, the connection stays healthy.
//
//   - ServerConfig / ClientConfig: Configuration of the RPC server and of a single
//     pooled client handle (timeouts, keepalive budget, socket options).
//
//   - Logger: Custom logging implementation that plugs logrus into Dragonboat's
//     logger registry, so every package logs through logger.GetLogger.
package common
