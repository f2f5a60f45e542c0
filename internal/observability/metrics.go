package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// FrameCollector bundles Prometheus metrics for the render loop, observer
// actions, the body catalog and ephemeris lookups.
type FrameCollector struct {
	gatherer prometheus.Gatherer

	Frames         prometheus.Counter
	FrameDurations prometheus.Histogram
	SimTime        prometheus.Gauge

	ActionUpdates     *prometheus.CounterVec
	ActionsCompleted  *prometheus.CounterVec
	EphemerisFailures *prometheus.CounterVec
	CatalogBodies     prometheus.Gauge
}

// NewFrameCollector registers metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil. Registering twice
// against the same registry reuses the existing collectors.
func NewFrameCollector(reg prometheus.Registerer) (*FrameCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cosmoview_frames_total",
		Help: "Total number of simulated frames.",
	}), "cosmoview_frames_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cosmoview_frame_duration_seconds",
		Help:    "Wall-clock time spent updating one frame.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1},
	}), "cosmoview_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cosmoview_sim_time_seconds",
		Help: "Simulation time of the last frame, in seconds past J2000.",
	}), "cosmoview_sim_time_seconds")
	if err != nil {
		return nil, err
	}

	updates, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmoview_observer_action_updates_total",
		Help: "Observer action updates, labeled by action kind.",
	}, []string{"action"}), "cosmoview_observer_action_updates_total")
	if err != nil {
		return nil, err
	}

	completed, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmoview_observer_actions_completed_total",
		Help: "Observer actions run to completion, labeled by action kind.",
	}, []string{"action"}), "cosmoview_observer_actions_completed_total")
	if err != nil {
		return nil, err
	}

	failures, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmoview_ephemeris_failures_total",
		Help: "Frame-transform service errors, labeled by rotation model.",
	}, []string{"model"}), "cosmoview_ephemeris_failures_total")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cosmoview_catalog_bodies",
		Help: "Current number of bodies in the catalog.",
	}), "cosmoview_catalog_bodies")
	if err != nil {
		return nil, err
	}

	return &FrameCollector{
		gatherer:          gatherer,
		Frames:            frames,
		FrameDurations:    durations,
		SimTime:           simTime,
		ActionUpdates:     updates,
		ActionsCompleted:  completed,
		EphemerisFailures: failures,
		CatalogBodies:     bodies,
	}, nil
}

// ObserveFrame records one frame update.
func (c *FrameCollector) ObserveFrame(d time.Duration, simTime float64) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDurations.Observe(d.Seconds())
	c.SimTime.Set(simTime)
}

// ActionUpdated satisfies observer.ActionRecorder.
func (c *FrameCollector) ActionUpdated(action string) {
	if c == nil {
		return
	}
	c.ActionUpdates.WithLabelValues(action).Inc()
}

// ActionCompleted satisfies observer.ActionRecorder.
func (c *FrameCollector) ActionCompleted(action string) {
	if c == nil {
		return
	}
	c.ActionsCompleted.WithLabelValues(action).Inc()
}

// RecordEphemerisFailure satisfies core.FailureRecorder.
func (c *FrameCollector) RecordEphemerisFailure(model string) {
	if c == nil {
		return
	}
	c.EphemerisFailures.WithLabelValues(model).Inc()
}

// SetCatalogBodies sets the catalog size gauge.
func (c *FrameCollector) SetCatalogBodies(n int) {
	if c == nil {
		return
	}
	c.CatalogBodies.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *FrameCollector) Handler() http.Handler {
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

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
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
