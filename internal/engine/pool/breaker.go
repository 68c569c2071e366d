package pool

import (
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
)

// Breaker trips once a fixed number of failures has been recorded.
// It never cancels anything; callers stop waiting on further results when it trips.
type Breaker struct {
	mu       sync.Mutex
	limit    int
	failures int
}

// NewBreaker creates a breaker tripping after limit failures.
// A limit of zero or less uses domain.DefaultMaxFailures.
func NewBreaker(limit int) *Breaker {
	if limit <= 0 {
		limit = domain.DefaultMaxFailures
	}
	return &Breaker{limit: limit}
}

// Record counts one outcome and reports whether the breaker is now tripped.
func (b *Breaker) Record(failed bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if failed {
		b.failures++
	}
	return b.failures >= b.limit
}

// Tripped reports whether the failure limit has been reached.
func (b *Breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures >= b.limit
}

// Failures returns the number of failures recorded so far.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Limit returns the configured failure limit.
func (b *Breaker) Limit() int {
	return b.limit
}
