// Package unix implements Unix domain socket transport for the pooled RPC clients.
// The endpoint of both client and server is the path of the socket file, an existing
// file at that path is removed when the server starts listening.
//
// Unix sockets avoid the TCP stack entirely and are the fastest option when the
// client and the service run on the same host.
package unix
