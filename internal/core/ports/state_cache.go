package ports

import "go.trai.ch/kiln/internal/core/domain"

// StateCache is a cross-process compare-and-swap cache over the state of a file set.
//
//go:generate mockgen -source=state_cache.go -destination=mocks/mock_state_cache.go -package=mocks
type StateCache interface {
	// CurrentHash returns the aggregate hash of files. It is independent of input order.
	CurrentHash(files []string) string

	// IsValid reports whether the persisted record matches the current state of files.
	IsValid(files []string) (bool, error)

	// Snapshot captures the current state of files for a later Commit.
	Snapshot(files []string) domain.StateSnapshot

	// Commit persists snap unless a record with a different hash already exists.
	// A rejected commit returns false and a nil error.
	Commit(snap domain.StateSnapshot) (bool, error)

	// MarkSuccess commits the current state of files.
	MarkSuccess(files []string) (bool, error)

	// Invalidate removes the persisted record.
	Invalidate() error

	// Record returns the persisted record, or nil if there is none.
	Record() (*domain.AtomicCacheRecord, error)
}
