package harness

import "runtime"

// Mode tags how a timed function performs its requests.
type Mode int

const (
	// Blocking functions park OS threads on every in-flight request.
	Blocking Mode = iota
	// Suspending functions fan out goroutines that yield while waiting on
	// the network. They run on a scheduler pinned to one OS thread.
	Suspending
)

// String returns the mode name used in reports.
func (m Mode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case Suspending:
		return "suspending"
	default:
		return "unknown"
	}
}

// enter prepares the scheduler for m and returns a func undoing it.
func (m Mode) enter() func() {
	if m != Suspending {
		return func() {}
	}

	prev := runtime.GOMAXPROCS(1)

	return func() { runtime.GOMAXPROCS(prev) }
}
