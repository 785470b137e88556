package pool

import (
	"fmt"

	"github.com/VictoriaMetrics/metrics"
)

// poolMetrics holds the per pool metrics set
type poolMetrics struct {
	set *metrics.Set

	pops            *metrics.Counter
	popTimeouts     *metrics.Counter
	created         *metrics.Counter
	removed         *metrics.Counter
	expired         *metrics.Counter
	connectFailures *metrics.Counter
}

// newPoolMetrics creates the metrics for a pool, labeled with the client kind
func newPoolMetrics[T IPooledClient](p *ClientPool[T]) *poolMetrics {
	set := metrics.NewSet()
	label := fmt.Sprintf("{client=%q}", p.config.ClientKind)

	set.NewGauge("dpool_pool_size"+label, func() float64 {
		return float64(p.Stats().Size)
	})
	set.NewGauge("dpool_pool_idle"+label, func() float64 {
		return float64(p.Stats().Idle)
	})
	set.NewGauge("dpool_pool_waiting"+label, func() float64 {
		return float64(p.Stats().Waiting)
	})
	set.NewGauge("dpool_pool_max_size"+label, func() float64 {
		return float64(p.config.MaxSize)
	})

	return &poolMetrics{
		set:             set,
		pops:            set.NewCounter("dpool_pool_pops_total" + label),
		popTimeouts:     set.NewCounter("dpool_pool_pop_timeouts_total" + label),
		created:         set.NewCounter("dpool_pool_clients_created_total" + label),
		removed:         set.NewCounter("dpool_pool_clients_removed_total" + label),
		expired:         set.NewCounter("dpool_pool_clients_expired_total" + label),
		connectFailures: set.NewCounter("dpool_pool_connect_failures_total" + label),
	}
}
