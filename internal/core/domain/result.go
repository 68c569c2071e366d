package domain

// Result is the outcome of a subprocess-backed operation (compile, archive, link).
type Result struct {
	// OK is true when the process exited with status zero.
	OK bool
	// Output is stdout and stderr interleaved in arrival order.
	Output string
	// ExitCode is the process exit status, or -1 when it could not be determined.
	ExitCode int
}

// SyntheticFailure builds a failed Result for an operation that produced no process output,
// such as a task that exceeded its deadline.
func SyntheticFailure(msg string) Result {
	return Result{OK: false, Output: msg, ExitCode: -1}
}
