package pool

import "time"

// IPooledClient is the lifecycle contract of a pooled client handle.
// A handle is owned either by the pool (idle) or by exactly one caller (checked out),
// so implementations do not need to be safe for concurrent use.
type IPooledClient interface {
	// Connect opens the transport. It is a no-op if the handle is already connected.
	// On failure the handle stays disconnected and reusable and a fault.KindConnection error is returned.
	Connect() error

	// Disconnect closes the transport. It is a no-op if the handle is not connected.
	// Failures are logged, never returned.
	Disconnect()

	// IsConnected reports whether the transport is open. It must not block.
	IsConnected() bool

	// KeepAlive reconnects the handle if it is not connected.
	// Failures are logged, the handle may stay disconnected.
	KeepAlive()

	// KeepAliveTimeout retries Connect until it succeeds or timeout elapses.
	// It returns a fault.KindConnection error if the handle could not be connected in time.
	KeepAliveTimeout(timeout time.Duration) error

	// ConnectedAt returns the time of the last successful Connect
	ConnectedAt() time.Time

	// KeepaliveBudget returns how long a connection may be kept before it is
	// discarded on release. A budget <= 0 disables age based eviction.
	KeepaliveBudget() time.Duration
}

// Factory constructs a new, not yet connected handle for the given address and port.
// It must not perform any network I/O since it is called with the pool lock held.
type Factory[T IPooledClient] func(address string, port int) (T, error)
