package replicated

import "time"

// DefaultTimeout bounds each individual backend call.
const DefaultTimeout = 3 * time.Second

// Policy tunes the replicate behaviour.
type Policy struct {
	// Timeout bounds each backend call; expiry counts as a backend failure.
	Timeout time.Duration
	// FallbackOnEmpty makes an empty list from the primary query the
	// secondary, exactly as a failed primary does. A legitimately empty
	// primary table then costs one extra secondary read.
	FallbackOnEmpty bool
}

// DefaultPolicy is the behaviour of the original deployment.
func DefaultPolicy() Policy {
	return Policy{Timeout: DefaultTimeout, FallbackOnEmpty: true}
}
