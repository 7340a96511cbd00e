package workflow

// Decision is the router's verdict after a test step.
type Decision int

const (
	// Retry requests another generate→test cycle.
	Retry Decision = iota
	// StopSuccess terminates the run with a passing candidate.
	StopSuccess
	// StopExhausted terminates the run after the iteration budget is spent.
	StopExhausted
)

// String returns the decision name for logs and transcripts.
func (d Decision) String() string {
	switch d {
	case Retry:
		return "retry"
	case StopSuccess:
		return "stop_success"
	case StopExhausted:
		return "stop_exhausted"
	default:
		return "unknown"
	}
}

// Route decides how the workflow proceeds after a test. It is a pure
// function of its three inputs:
//
//	passed                          → StopSuccess
//	!passed, iteration < max        → Retry
//	!passed, iteration >= max       → StopExhausted
//
// The iteration increment on Retry is the engine's responsibility.
func Route(passed bool, iteration, maxIterations int) Decision {
	if passed {
		return StopSuccess
	}
	if iteration < maxIterations {
		return Retry
	}
	return StopExhausted
}
