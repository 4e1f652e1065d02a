// Package backoff implements the collector's empty-poll back-off policy as
// an explicit two-state machine, per the design note that this must not be
// buried in ad-hoc counters.
package backoff

import "time"

// State is one of the two states the policy can be in.
type State int

const (
	// Eager means no waits are being inserted: either the rings are busy
	// enough that polling is cheaper than sleeping, or the periodic reset
	// just fired and the loop gets one free immediate poll.
	Eager State = iota
	// BackingOff means consecutive empty polls are being throttled with a
	// fixed sleep between iterations.
	BackingOff
)

const (
	// MaxConsecutiveEmptyPolls is the number of sleeps after which the
	// policy forces one eager (non-sleeping) iteration, giving the drain
	// loop a chance to observe freshly arrived data immediately.
	MaxConsecutiveEmptyPolls = 4
	// EmptyWaitSleep is the duration slept on each BackingOff iteration.
	EmptyWaitSleep = 30 * time.Millisecond
	// LargeWindowThreshold is the readable-byte count above which any ring
	// being busy is reason enough to stop sleeping altogether.
	LargeWindowThreshold = 20000
)

// Policy tracks the back-off state machine's single piece of state: the
// number of consecutive empty polls observed. It is not safe for concurrent
// use; the collector scheduler owns one instance and drives it from its
// single drain loop.
type Policy struct {
	consecutiveEmptyPolls int
}

// NewPolicy returns a Policy starting in the Eager state.
func NewPolicy() *Policy {
	return &Policy{}
}

// Decision is the outcome of consulting the policy for one empty-poll
// iteration.
type Decision struct {
	// Sleep is true when the caller should sleep for EmptyWaitSleep before
	// refreshing the rings.
	Sleep bool
	// State is the state the policy is in after this decision.
	State State
}

// Observe reports the largest readable window seen across all rings this
// iteration and returns the policy's decision for whether to sleep.
//
// Three transitions, matching the design note exactly:
//  1. maxReadableBytes > LargeWindowThreshold -> Eager, counter reset (the
//     system is busy; polling beats sleeping).
//  2. consecutiveEmptyPolls >= MaxConsecutiveEmptyPolls -> Eager, counter
//     reset (after four sleeps, skip one to observe fresh data immediately).
//  3. otherwise -> BackingOff, sleep this iteration, counter incremented.
func (p *Policy) Observe(maxReadableBytes int) Decision {
	if maxReadableBytes > LargeWindowThreshold {
		p.consecutiveEmptyPolls = 0
		return Decision{Sleep: false, State: Eager}
	}

	if p.consecutiveEmptyPolls >= MaxConsecutiveEmptyPolls {
		p.consecutiveEmptyPolls = 0
		return Decision{Sleep: false, State: Eager}
	}

	p.consecutiveEmptyPolls++
	return Decision{Sleep: true, State: BackingOff}
}

// ConsecutiveEmptyPolls reports the current counter value, for diagnostics.
func (p *Policy) ConsecutiveEmptyPolls() int {
	return p.consecutiveEmptyPolls
}
