package domain

import (
	"time"

	"go.trai.ch/zerr"
)

// TargetState is the lifecycle position of one compile+link target.
type TargetState int

const (
	// StatePending is the state of a target that has not started.
	StatePending TargetState = iota
	// StateCompiling is the state of a target whose sources are being compiled.
	StateCompiling
	// StateCompiled is the state of a target whose sources compiled successfully.
	StateCompiled
	// StateCompileFailed is the terminal state of a target whose compilation failed.
	StateCompileFailed
	// StateLinking is the state of a target being linked.
	StateLinking
	// StateLinked is the terminal state of a successfully linked target.
	StateLinked
	// StateLinkFailed is the terminal state of a target whose link step failed.
	StateLinkFailed
)

var stateNames = [...]string{
	StatePending:       "PENDING",
	StateCompiling:     "COMPILING",
	StateCompiled:      "COMPILED",
	StateCompileFailed: "COMPILE_FAILED",
	StateLinking:       "LINKING",
	StateLinked:        "LINKED",
	StateLinkFailed:    "LINK_FAILED",
}

var transitions = map[TargetState][]TargetState{
	StatePending:   {StateCompiling},
	StateCompiling: {StateCompiled, StateCompileFailed},
	StateCompiled:  {StateLinking},
	StateLinking:   {StateLinked, StateLinkFailed},
}

func (s TargetState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible from s.
func (s TargetState) Terminal() bool {
	return s == StateCompileFailed || s == StateLinkFailed || s == StateLinked
}

// CanTransition reports whether next is reachable from s in one step.
func (s TargetState) CanTransition(next TargetState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TargetResult collects everything known about one target after a batch.
type TargetResult struct {
	Name       string
	State      TargetState
	Compile    Result
	Link       Result
	Executable string
	CacheKey   string
	CacheHit   bool
	Err        error
	Duration   time.Duration
}

// NewTargetResult returns a pending result for the named target.
func NewTargetResult(name string) *TargetResult {
	return &TargetResult{Name: name, State: StatePending}
}

// Advance moves the target to next, rejecting transitions the state machine does not allow.
func (r *TargetResult) Advance(next TargetState) error {
	if !r.State.CanTransition(next) {
		err := zerr.Wrap(ErrInvalidTransition, "cannot advance "+r.Name)
		err = zerr.With(err, "from", r.State.String())
		return zerr.With(err, "to", next.String())
	}
	r.State = next
	return nil
}

// Failed reports whether the target ended in a failure state.
func (r *TargetResult) Failed() bool {
	return r.State == StateCompileFailed || r.State == StateLinkFailed
}

// FailureOutput returns the captured tool output of the step that failed.
func (r *TargetResult) FailureOutput() string {
	switch r.State {
	case StateCompileFailed:
		return r.Compile.Output
	case StateLinkFailed:
		return r.Link.Output
	default:
		return ""
	}
}

// BatchReport is the aggregated outcome of building many independent targets.
type BatchReport struct {
	// Targets holds every result that was collected, in submission order.
	Targets []TargetResult
	// Failures holds the reported failures, at most the breaker limit.
	Failures []TargetResult
	// Unreported counts targets whose results were not awaited after the breaker tripped.
	Unreported int
	// TimedOut counts targets recorded as synthetic timeout failures.
	TimedOut int
}

// OK reports whether every target linked and nothing was left unreported.
func (b *BatchReport) OK() bool {
	return len(b.Failures) == 0 && b.Unreported == 0
}

// Linked returns the number of targets that reached StateLinked.
func (b *BatchReport) Linked() int {
	n := 0
	for i := range b.Targets {
		if b.Targets[i].State == StateLinked {
			n++
		}
	}
	return n
}
