package pool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ValentinKolb/dPool/lib/fault"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("pool")

// ClientPool is a bounded pool of client handles of type T (see package documentation)
type ClientPool[T IPooledClient] struct {
	config  Config
	factory Factory[T]

	mu       sync.Mutex
	idle     []T             // FIFO, oldest idle handle first
	currSize int             // handles created minus handles destroyed
	waiters  []chan struct{} // FIFO, one buffered channel per blocked Pop
	closed   bool

	metrics *poolMetrics
}

// Stats is a snapshot of the pool state
type Stats struct {
	ClientKind string
	Size       int
	Idle       int
	InUse      int
	Waiting    int
	MinSize    int
	MaxSize    int
}

// NewClientPool creates a new pool and eagerly constructs config.MinSize handles.
// The handles are not connected until they are handed out by Pop.
func NewClientPool[T IPooledClient](config Config, factory Factory[T]) (*ClientPool[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("invalid pool config: factory is nil")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	p := &ClientPool[T]{
		config:  config,
		factory: factory,
		idle:    make([]T, 0, config.MaxSize),
	}

	for i := 0; i < config.MinSize; i++ {
		client, err := factory(config.Address, config.Port)
		if err != nil {
			for _, c := range p.idle {
				c.Disconnect()
			}
			return nil, fmt.Errorf("failed to create %s client %d/%d: %w", config.ClientKind, i+1, config.MinSize, err)
		}
		p.idle = append(p.idle, client)
	}
	p.currSize = config.MinSize
	p.metrics = newPoolMetrics(p)
	p.metrics.created.Add(config.MinSize)

	Logger.Infof("Created %s client pool for %s (min %d, max %d, timeout %s)",
		config.ClientKind, config.Endpoint(), config.MinSize, config.MaxSize, config.AcquireTimeout)

	return p, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Pop acquires a connected handle. See PopContext.
func (p *ClientPool[T]) Pop() (T, error) {
	return p.PopContext(context.Background())
}

// PopContext acquires a connected handle. The caller owns the handle until it is
// handed back with Push, PushTimeout, Keepalive or Remove.
//
// It fails with fault.ErrPoolTimeout if the pool stays at capacity for longer than the
// acquire timeout, with fault.ErrConnection if no connection could be established and
// with fault.ErrPoolClosed once the pool is closed. A cancelled ctx ends the wait early.
func (p *ClientPool[T]) PopContext(ctx context.Context) (T, error) {
	var zero T
	deadline := time.Now().Add(p.config.AcquireTimeout)

	p.mu.Lock()
	var client T
	created := false
	woken := false
	for len(p.idle) == 0 {
		if p.closed {
			p.mu.Unlock()
			return zero, fault.PoolClosed("pool.Pop")
		}

		// grow the pool, this takes precedence over waiting callers
		if p.currSize < p.config.MaxSize {
			c, err := p.factory(p.config.Address, p.config.Port)
			if err != nil {
				p.mu.Unlock()
				return zero, fault.Connection("pool.Pop", fmt.Sprintf("failed to create %s client", p.config.ClientKind), err)
			}
			p.currSize++
			client, created = c, true
			break
		}

		// a waiter whose wakeup was taken by another Pop keeps its place at the head
		if err := p.waitLocked(ctx, deadline, woken); err != nil {
			p.mu.Unlock()
			if errors.Is(err, fault.ErrPoolTimeout) {
				p.metrics.popTimeouts.Inc()
				Logger.Warningf("ClientPool %s pop timeout after %s", p.config.ClientKind, p.config.AcquireTimeout)
			}
			return zero, err
		}
		woken = true
	}
	if !created {
		client = p.idle[0]
		p.idle[0] = zero
		p.idle = p.idle[1:]
	}
	p.mu.Unlock()

	if created {
		p.metrics.created.Inc()
	}
	p.metrics.pops.Inc()

	return p.connect(client)
}

// Push hands a handle back to the pool. The handle is reconnected if necessary
// (failures are logged) and appended to the idle queue, waking one waiting Pop.
func (p *ClientPool[T]) Push(client T) error {
	client.KeepAlive()
	return p.release(client)
}

// PushTimeout hands a handle back to the pool like Push, but reconnects with
// KeepAliveTimeout. If the handle cannot be connected within timeout it is removed
// from the pool and the connection error is returned.
func (p *ClientPool[T]) PushTimeout(client T, timeout time.Duration) error {
	if err := client.KeepAliveTimeout(timeout); err != nil {
		Logger.Errorf("Failed to keep %s client alive, removing it: %v", p.config.ClientKind, err)
		p.Remove(client)
		return err
	}
	return p.release(client)
}

// Remove destroys a checked out handle and frees its slot. Waiting callers are not woken.
func (p *ClientPool[T]) Remove(client T) {
	client.Disconnect()

	p.mu.Lock()
	p.currSize--
	p.mu.Unlock()

	p.metrics.removed.Inc()
}

// Keepalive hands a handle back to the pool if its connection is younger than its
// keepalive budget and removes it otherwise.
func (p *ClientPool[T]) Keepalive(client T) error {
	if budget := client.KeepaliveBudget(); budget > 0 {
		if age := time.Since(client.ConnectedAt()); age > budget {
			Logger.Debugf("Discarding %s client, connection age %s exceeds keepalive budget %s",
				p.config.ClientKind, age, budget)
			p.metrics.expired.Inc()
			p.Remove(client)
			return nil
		}
	}
	return p.Push(client)
}

// Close destroys all idle handles and wakes all waiting callers, which fail with
// fault.ErrPoolClosed. Handles that are checked out are destroyed when they are handed back.
func (p *ClientPool[T]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.currSize -= len(idle)
	for _, w := range p.waiters {
		w <- struct{}{}
	}
	p.waiters = nil
	p.mu.Unlock()

	for _, client := range idle {
		client.Disconnect()
	}

	Logger.Infof("Closed %s client pool (%d idle clients destroyed)", p.config.ClientKind, len(idle))
	return nil
}

// Stats returns a snapshot of the pool state
func (p *ClientPool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		ClientKind: p.config.ClientKind,
		Size:       p.currSize,
		Idle:       len(p.idle),
		InUse:      p.currSize - len(p.idle),
		Waiting:    len(p.waiters),
		MinSize:    p.config.MinSize,
		MaxSize:    p.config.MaxSize,
	}
}

// Kind returns the client kind the pool was created for
func (p *ClientPool[T]) Kind() string {
	return p.config.ClientKind
}

// Address returns the address of the downstream service
func (p *ClientPool[T]) Address() string {
	return p.config.Address
}

// Port returns the port of the downstream service
func (p *ClientPool[T]) Port() int {
	return p.config.Port
}

// Config returns the effective pool configuration
func (p *ClientPool[T]) Config() Config {
	return p.config
}

// WriteMetrics writes the pool metrics in Prometheus text format to w
func (p *ClientPool[T]) WriteMetrics(w io.Writer) {
	p.metrics.set.WritePrometheus(w)
}

// RegisterMetrics adds the pool metrics to the global metrics registry,
// so they are exposed by metrics.WritePrometheus
func (p *ClientPool[T]) RegisterMetrics() {
	metrics.RegisterSet(p.metrics.set)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// waitLocked parks the caller until a Push signals it, the deadline passes or ctx is done.
// It must be called with p.mu held and returns with p.mu held. A nil result does not
// guarantee an idle handle, the caller must re-check. With front set the caller is
// queued ahead of all other waiters.
func (p *ClientPool[T]) waitLocked(ctx context.Context, deadline time.Time, front bool) error {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return fault.PoolTimeout("pool.Pop", p.config.AcquireTimeout)
	}

	signal := make(chan struct{}, 1)
	if front {
		p.waiters = append(p.waiters, nil)
		copy(p.waiters[1:], p.waiters)
		p.waiters[0] = signal
	} else {
		p.waiters = append(p.waiters, signal)
	}
	p.mu.Unlock()

	timer := time.NewTimer(remaining)
	var err error
	select {
	case <-signal:
	case <-timer.C:
		err = fault.PoolTimeout("pool.Pop", p.config.AcquireTimeout)
	case <-ctx.Done():
		err = ctx.Err()
	}
	timer.Stop()

	p.mu.Lock()
	if err == nil {
		return nil
	}

	signalled := !p.removeWaiterLocked(signal)

	// a handle that became idle right at the deadline still counts
	if errors.Is(err, fault.ErrPoolTimeout) && len(p.idle) > 0 {
		return nil
	}

	// hand a wakeup we will not consume on to the next waiter
	if signalled && len(p.idle) > 0 {
		p.notifyOneLocked()
	}
	return err
}

// removeWaiterLocked removes signal from the waiter queue and reports whether it was still queued
func (p *ClientPool[T]) removeWaiterLocked(signal chan struct{}) bool {
	for i, w := range p.waiters {
		if w == signal {
			copy(p.waiters[i:], p.waiters[i+1:])
			p.waiters[len(p.waiters)-1] = nil
			p.waiters = p.waiters[:len(p.waiters)-1]
			return true
		}
	}
	return false
}

// notifyOneLocked wakes the longest waiting Pop, if any
func (p *ClientPool[T]) notifyOneLocked() {
	if len(p.waiters) == 0 {
		return
	}
	signal := p.waiters[0]
	p.waiters[0] = nil
	p.waiters = p.waiters[1:]
	signal <- struct{}{}
}

// release appends a handle to the idle queue and wakes one waiter.
// On a closed pool the handle is destroyed instead.
func (p *ClientPool[T]) release(client T) error {
	p.mu.Lock()
	if p.closed {
		p.currSize--
		p.mu.Unlock()
		client.Disconnect()
		return fault.PoolClosed("pool.Push")
	}
	p.idle = append(p.idle, client)
	p.notifyOneLocked()
	p.mu.Unlock()
	return nil
}

// connect connects a handle outside the lock. After ConnectRetries failed attempts the
// handle is destroyed and a single replacement, which inherits its slot, gets one attempt.
// If the replacement fails as well the slot is freed and a connection error is returned.
func (p *ClientPool[T]) connect(client T) (T, error) {
	var zero T
	retries := p.config.ConnectRetries

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		if err = client.Connect(); err == nil {
			return client, nil
		}
		p.metrics.connectFailures.Inc()
		Logger.Errorf("Failed to connect %s (%s). Retries left: %d: %v",
			p.config.ClientKind, p.config.Endpoint(), retries-attempt, err)
		time.Sleep(p.config.ConnectRetryInterval)
	}

	Logger.Errorf("Max retries reached for %s, replacing client", p.config.ClientKind)
	client.Disconnect()

	replacement, cerr := p.factory(p.config.Address, p.config.Port)
	if cerr == nil {
		p.metrics.created.Inc()
		if err = replacement.Connect(); err == nil {
			return replacement, nil
		}
		p.metrics.connectFailures.Inc()
		replacement.Disconnect()
	} else {
		err = cerr
	}

	p.mu.Lock()
	p.currSize--
	p.mu.Unlock()
	p.metrics.removed.Inc()

	return zero, fault.Connection("pool.Pop",
		fmt.Sprintf("failed to connect %s at %s", p.config.ClientKind, p.config.Endpoint()), err)
}
