// Package metrics records build and cache measurements with Prometheus.
package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

const namespace = "kiln"

var _ ports.Metrics = (*Recorder)(nil)

// Recorder implements ports.Metrics on a private Prometheus registry.
type Recorder struct {
	registry     *prom.Registry
	toolDuration *prom.HistogramVec
	reuse        *prom.CounterVec
	targets      *prom.CounterVec
	gcFiles      *prom.CounterVec
	gcBytes      *prom.CounterVec
	gcKeptBytes  prom.Gauge
}

// New constructs and registers the kiln metrics on a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prom.NewRegistry(),
		toolDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Duration of compiler, archiver and linker invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"}),
		reuse: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_reuse_total",
			Help:      "Shared artifact reuse decisions",
		}, []string{"artifact", "decision"}),
		targets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "targets_total",
			Help:      "Targets by terminal state and link cache hit",
		}, []string{"state", "cache_hit"}),
		gcFiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "gc_removed_files_total",
			Help:      "Link cache files selected for removal",
		}, []string{"dry_run"}),
		gcBytes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "gc_freed_bytes_total",
			Help:      "Bytes selected for removal from the link cache",
		}, []string{"dry_run"}),
		gcKeptBytes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "gc_kept_bytes",
			Help:      "Bytes kept in the link cache after the last collection",
		}),
	}
	r.registry.MustRegister(r.toolDuration, r.reuse, r.targets, r.gcFiles, r.gcBytes, r.gcKeptBytes)
	return r
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prom.Gatherer {
	return r.registry
}

// ObserveTool records one tool invocation.
func (r *Recorder) ObserveTool(kind string, elapsed time.Duration, ok bool) {
	result := "failed"
	if ok {
		result = "success"
	}
	r.toolDuration.WithLabelValues(kind, result).Observe(elapsed.Seconds())
}

// ObserveReuse records a reuse decision for a shared artifact.
func (r *Recorder) ObserveReuse(artifact string, reused bool) {
	decision := "rebuilt"
	if reused {
		decision = "reused"
	}
	r.reuse.WithLabelValues(artifact, decision).Inc()
}

// ObserveTarget records a target reaching a terminal state.
func (r *Recorder) ObserveTarget(state domain.TargetState, cacheHit bool) {
	r.targets.WithLabelValues(state.String(), strconv.FormatBool(cacheHit)).Inc()
}

// ObserveGC records a collection outcome.
func (r *Recorder) ObserveGC(stats domain.GCStats, dryRun bool) {
	label := strconv.FormatBool(dryRun)
	r.gcFiles.WithLabelValues(label).Add(float64(stats.FilesRemoved))
	r.gcBytes.WithLabelValues(label).Add(float64(stats.BytesFreed))
	if !dryRun {
		r.gcKeptBytes.Set(float64(stats.BytesKept))
	}
}

// WriteTo writes the metrics in the Prometheus text format to path. An empty path is a no-op.
func (r *Recorder) WriteTo(path string) error {
	if path == "" {
		return nil
	}
	if err := prom.WriteToTextfile(path, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	return nil
}
