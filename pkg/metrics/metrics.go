// Package metrics exposes Prometheus metrics for the reconciler and the
// dependency tracker.
//
// A nil *Collector is valid and records nothing, so the renderer and the
// tracker can call it unconditionally.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vrt").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for patch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is where metrics are registered and gathered from.
	// Default: a fresh prometheus.Registry.
	Registry *prometheus.Registry
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vrt",
		Buckets:   prometheus.DefBuckets,
	}
}

// Collector holds the runtime's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	mounts        *prometheus.CounterVec
	patches       *prometheus.CounterVec
	unmounts      prometheus.Counter
	moves         prometheus.Counter
	propUpdates   *prometheus.CounterVec
	renders       *prometheus.CounterVec
	patchDuration prometheus.Histogram

	trackerRuns     prometheus.Counter
	trackerTracks   prometheus.Counter
	trackerNotifies prometheus.Counter
	trackerEdges    prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics.
//
// Metrics collected (default namespace):
//   - vrt_mounts_total: nodes created, by kind (element, component)
//   - vrt_patches_total: nodes updated in place, by kind
//   - vrt_unmounts_total: nodes removed from the target
//   - vrt_moves_total: keyed children moved during a diff
//   - vrt_prop_updates_total: prop writes, by op (set, remove, listener)
//   - vrt_renders_total: component renders, by component and phase
//   - vrt_patch_duration_seconds: duration of top-level patches
//   - vrt_tracker_runs_total: computation runs
//   - vrt_tracker_tracked_total: dependency edges recorded
//   - vrt_tracker_notifies_total: writes that had dependents
//   - vrt_tracker_edges: edges currently stored
func NewCollector(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &Collector{
		registry:    config.Registry,
		mounts:      counterVec("mounts_total", "Total number of nodes mounted", "kind"),
		patches:     counterVec("patches_total", "Total number of nodes patched in place", "kind"),
		unmounts:    counter("unmounts_total", "Total number of nodes unmounted"),
		moves:       counter("moves_total", "Total number of keyed children moved"),
		propUpdates: counterVec("prop_updates_total", "Total number of prop writes to the target", "op"),
		renders:     counterVec("renders_total", "Total number of component renders", "component", "phase"),
		patchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patch_duration_seconds",
			Help:        "Top-level patch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		trackerRuns:     counter("tracker_runs_total", "Total number of computation runs"),
		trackerTracks:   counter("tracker_tracked_total", "Total number of dependency edges recorded"),
		trackerNotifies: counter("tracker_notifies_total", "Total number of writes that re-ran dependents"),
		trackerEdges: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tracker_edges",
			Help:        "Number of dependency edges currently stored",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Mount records a newly mounted node of the given kind.
func (c *Collector) Mount(kind string) {
	if c == nil {
		return
	}
	c.mounts.WithLabelValues(kind).Inc()
}

// Patch records an in-place update of a node of the given kind.
func (c *Collector) Patch(kind string) {
	if c == nil {
		return
	}
	c.patches.WithLabelValues(kind).Inc()
}

// Unmount records a node removed from the target.
func (c *Collector) Unmount() {
	if c == nil {
		return
	}
	c.unmounts.Inc()
}

// Move records a keyed child moved to a new position.
func (c *Collector) Move() {
	if c == nil {
		return
	}
	c.moves.Inc()
}

// PropUpdate records a prop write; op is "set", "remove" or "listener".
func (c *Collector) PropUpdate(op string) {
	if c == nil {
		return
	}
	c.propUpdates.WithLabelValues(op).Inc()
}

// Render records a component render; phase is "mount" or "update".
func (c *Collector) Render(component, phase string) {
	if c == nil {
		return
	}
	c.renders.WithLabelValues(component, phase).Inc()
}

// ObservePatch records the duration of a top-level patch.
func (c *Collector) ObservePatch(d time.Duration) {
	if c == nil {
		return
	}
	c.patchDuration.Observe(d.Seconds())
}

// Tracked implements reactive.Observer.
func (c *Collector) Tracked(string) {
	if c == nil {
		return
	}
	c.trackerTracks.Inc()
}

// Triggered implements reactive.Observer.
func (c *Collector) Triggered(_ string, dependents int) {
	if c == nil || dependents == 0 {
		return
	}
	c.trackerNotifies.Inc()
}

// Ran implements reactive.Observer.
func (c *Collector) Ran(edges int) {
	if c == nil {
		return
	}
	c.trackerRuns.Inc()
	c.trackerEdges.Set(float64(edges))
}
