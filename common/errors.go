package common

import "errors"

// Construction errors abort a whole query.
var (
	ErrMalformedTopology = errors.New("malformed topology")
	ErrFetch             = errors.New("snapshot fetch failed")
)

// Routing errors are reported to the caller of Route.
var ErrUnreachable = errors.New("unreachable")

// Tracing errors degrade a single flow to an unknown path.
var (
	ErrNoOutputAction = errors.New("no output action")
	ErrLoopDetected   = errors.New("loop detected")
	ErrBrokenChain    = errors.New("next hop flow not found")
)
