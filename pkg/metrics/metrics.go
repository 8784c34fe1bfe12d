// Package metrics provides the prometheus collectors of the execution core.
//
// Collectors are resolved once at construction so that updating them on the
// tick path never allocates.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "audionodes"

// Engine groups the collectors updated by the tick driver.
type Engine struct {
	Ticks             prometheus.Counter
	TickDuration      prometheus.Histogram
	DeadlineMisses    prometheus.Counter
	ActiveNodes       prometheus.Gauge
	DescriptorChanges prometheus.Counter
	NodePanics        prometheus.Counter
}

// Messages groups the collectors updated by the return-message channel.
type Messages struct {
	DeliveredExec    prometheus.Counter
	DeliveredControl prometheus.Counter
	Dropped          prometheus.Counter
	Failed           prometheus.Counter
}

// NewEngine creates the engine collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewEngine(reg prometheus.Registerer) *Engine {
	return &Engine{
		Ticks: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "ticks_total",
			Help:      "Total number of processed ticks",
		})),
		TickDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent processing one tick",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		})),
		DeadlineMisses: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "deadline_misses_total",
			Help:      "Ticks that took longer than one block of audio",
		})),
		ActiveNodes: register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "active_nodes",
			Help:      "Nodes reachable from a sink in the current graph",
		})),
		DescriptorChanges: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "polyphony",
			Name:      "descriptor_changes_total",
			Help:      "Voice shape changes that triggered a bundle resize",
		})),
		NodePanics: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "node_panics_total",
			Help:      "Process calls that panicked and were silenced",
		})),
	}
}

// NewMessages creates the return-message collectors and registers them on reg.
func NewMessages(reg prometheus.Registerer) *Messages {
	delivered := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "return_messages",
		Name:      "delivered_total",
		Help:      "Return messages handed to the host sink",
	}, []string{"path"}))

	return &Messages{
		DeliveredExec:    delivered.WithLabelValues("exec"),
		DeliveredControl: delivered.WithLabelValues("control"),
		Dropped: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "return_messages",
			Name:      "dropped_total",
			Help:      "Real-time return messages dropped because the queue was full",
		})),
		Failed: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "return_messages",
			Name:      "failed_total",
			Help:      "Return messages the host sink rejected",
		})),
	}
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}

	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}

	panic(err)
}
