package metrics

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ ports.Metrics = Noop{}

// Noop discards every measurement.
type Noop struct{}

// NewNoop returns a ports.Metrics that records nothing.
func NewNoop() ports.Metrics {
	return Noop{}
}

func (Noop) ObserveTool(string, time.Duration, bool) {}
func (Noop) ObserveReuse(string, bool) {}
func (Noop) ObserveTarget(domain.TargetState, bool) {}
func (Noop) ObserveGC(domain.GCStats, bool) {}
func (Noop) WriteTo(string) error { return nil }
