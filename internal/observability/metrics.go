package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for a simulation run and
// implements the engine's StepMetrics seam.
type SimCollector struct {
	gatherer prometheus.Gatherer

	StepsTotal   prometheus.Counter
	StepDuration prometheus.Histogram

	BoardBlocks  prometheus.Gauge
	ActiveBlocks prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil. Re-registration reuses existing collectors so repeated setup in
// tests or restarts is harmless.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lectron_sim_steps_total",
		Help: "Total number of completed simulation steps.",
	}), "lectron_sim_steps_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lectron_sim_step_duration_seconds",
		Help:    "Wall-clock duration of one simulation step in seconds.",
		Buckets: []float64{1e-7, 1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
	}), "lectron_sim_step_duration_seconds")
	if err != nil {
		return nil, err
	}

	blocks, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lectron_board_blocks",
		Help: "Current number of blocks on the board.",
	}), "lectron_board_blocks")
	if err != nil {
		return nil, err
	}
	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lectron_board_active_blocks",
		Help: "Number of blocks whose comparator latched active after the last step.",
	}), "lectron_board_active_blocks")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:     gatherer,
		StepsTotal:   steps,
		StepDuration: duration,
		BoardBlocks:  blocks,
		ActiveBlocks: active,
	}, nil
}

// ObserveStep records one completed simulation step. Satisfies the
// engine's StepMetrics interface.
func (c *SimCollector) ObserveStep(active, total int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.StepsTotal != nil {
		c.StepsTotal.Inc()
	}
	if c.StepDuration != nil {
		c.StepDuration.Observe(elapsed.Seconds())
	}
	if c.BoardBlocks != nil {
		c.BoardBlocks.Set(float64(total))
	}
	if c.ActiveBlocks != nil {
		c.ActiveBlocks.Set(float64(active))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
