package ports

import (
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

// Metrics records build and cache measurements.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveTool records one tool invocation of the given kind (compile, archive, link, pch).
	ObserveTool(kind string, elapsed time.Duration, ok bool)

	// ObserveReuse records whether a shared artifact was reused or rebuilt.
	ObserveReuse(artifact string, reused bool)

	// ObserveTarget records a target reaching a terminal state.
	ObserveTarget(state domain.TargetState, cacheHit bool)

	// ObserveGC records the outcome of a link cache collection.
	ObserveGC(stats domain.GCStats, dryRun bool)

	// WriteTo persists the collected metrics to path.
	WriteTo(path string) error
}
