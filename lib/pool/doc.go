// Package pool implements a generic, bounded and thread-safe pool of RPC client
// handles shared by request-handling goroutines.
//
// A pool is created for one downstream service (address and port) and holds
// between MinSize and MaxSize handles. MinSize handles are constructed eagerly
// when the pool is created but are not connected. They are connected lazily the
// first time they are handed out.
//
// Key Components:
//
//   - IPooledClient: the lifecycle contract every pooled handle implements
//     (Connect, Disconnect, IsConnected, KeepAlive, KeepAliveTimeout). The pool never
//     calls an RPC method itself.
//
//   - ClientPool: the pool. Pop hands out the oldest idle handle (FIFO), grows the
//     pool up to MaxSize when no handle is idle and otherwise waits up to the
//     acquire timeout. Push returns a handle, Remove destroys one and Keepalive
//     returns or destroys a handle depending on its keepalive budget.
//
// Acquisition algorithm:
//
//  1. While no handle is idle: if the pool is below MaxSize a new handle is
//     constructed and handed out directly, otherwise the caller waits for a Push
//     (FIFO among waiters) until the acquire timeout expires.
//  2. The oldest idle handle is taken.
//  3. Outside the lock the handle is connected with up to ConnectRetries attempts
//     spaced by ConnectRetryInterval. If all attempts fail the handle is destroyed
//     and one replacement gets a single attempt. If that fails too the slot is
//     released and a connection error is returned.
//
// Growth is preferred over waking idle waiters: a new caller may construct a
// handle while older callers are still waiting for a Push, so under bursty load
// a waiter can be starved by growing callers. A woken waiter whose handle was taken
// by a concurrent Pop before it ran is queued again at the head, not the tail.
//
// Thread Safety:
//
//	All methods are safe for concurrent use. The pool mutex only guards the idle
//	queue, the size counter and the waiter queue. It is never held while a handle
//	connects, reconnects or disconnects.
package pool
