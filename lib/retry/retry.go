package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ValentinKolb/dPool/lib/fault"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("retry")

// DefaultAttempts is the number of invocations if Options.Attempts is not set
const DefaultAttempts = 3

const (
	connectMsg   = "failed to connect to "
	reconnectMsg = "failed to reconnect to "
)

// IPool is the part of pool.ClientPool used by the orchestrator
type IPool[T any] interface {
	// PopContext acquires a connected handle
	PopContext(ctx context.Context) (T, error)
	// Keepalive hands a handle back, or destroys it if its keepalive budget is exceeded
	Keepalive(client T) error
	// Remove destroys a handle
	Remove(client T)
	// Kind returns the client kind of the pool, used in error messages
	Kind() string
}

// Options configure Invoke
type Options struct {
	// Attempts is the maximum number of invocations of the call (default 3)
	Attempts int
	// Op names the call in errors and log messages, defaults to the client kind
	Op string
}

// Invoke acquires a handle from p and runs call with it.
//
// If call fails with a transport fault and attempts remain, the handle is removed
// from the pool and call is retried with a newly acquired handle. Any other error
// and success end the invocation. The handle that is held last is always handed
// back with Keepalive, after the final attempt it is reconnected by the pool.
//
// Errors:
//   - the first acquisition fails: fault.KindConnection "failed to connect to <kind>"
//   - a reacquisition fails: fault.KindConnection "failed to reconnect to <kind>"
//   - call fails with a non transport error: that error
//   - all attempts fail with transport faults: the last transport fault
//
// The acquisition error is wrapped, errors.Is still matches fault.ErrPoolTimeout
// and fault.ErrPoolClosed.
func Invoke[T any, R any](ctx context.Context, p IPool[T], opts Options, call func(client T) (R, error)) (R, error) {
	var zero R
	kind := p.Kind()
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	op := opts.Op
	if op == "" {
		op = kind
	}

	client, err := p.PopContext(ctx)
	if err != nil {
		return zero, fault.Connection(op, connectMsg+kind, err)
	}

	for attempt := 1; ; attempt++ {
		result, err := call(client)
		if err == nil {
			releaseClient(p, client)
			return result, nil
		}

		if !fault.IsRetryable(err) {
			releaseClient(p, client)
			return zero, err
		}

		retriesLeft := attempts - attempt
		Logger.Errorf("Transport fault in %s: %v. Retries left: %d", op, err, retriesLeft)

		if retriesLeft <= 0 {
			releaseClient(p, client)
			exhaustedCounter(kind).Inc()
			Logger.Errorf("Failed to %s after %d attempts", op, attempts)
			return zero, err
		}

		retriesCounter(kind).Inc()
		p.Remove(client)
		client, err = p.PopContext(ctx)
		if err != nil {
			return zero, fault.Connection(op, reconnectMsg+kind, err)
		}
	}
}

// Do is Invoke for calls without a result
func Do[T any](ctx context.Context, p IPool[T], opts Options, call func(client T) error) error {
	_, err := Invoke(ctx, p, opts, func(client T) (struct{}, error) {
		return struct{}{}, call(client)
	})
	return err
}

// IsReconnectFailure reports whether err was returned by Invoke because no handle could be
// acquired for a retry, as opposed to the first acquisition
func IsReconnectFailure(err error) bool {
	var fe *fault.Error
	return errors.As(err, &fe) && fe.Kind == fault.KindConnection && strings.HasPrefix(fe.Msg, reconnectMsg)
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// releaseClient hands a handle back to the pool, a failure only means the handle is gone
func releaseClient[T any](p IPool[T], client T) {
	if err := p.Keepalive(client); err != nil {
		Logger.Warningf("Failed to release %s client: %v", p.Kind(), err)
	}
}

func retriesCounter(kind string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf("dpool_invoke_retries_total{client=%q}", kind))
}

func exhaustedCounter(kind string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf("dpool_invoke_exhausted_total{client=%q}", kind))
}
