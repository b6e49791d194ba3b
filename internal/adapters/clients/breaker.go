package clients

import (
	"sync"
	"time"
)

// State is the breaker state.
type State int

const (
	// StateClosed allows all requests.
	StateClosed State = iota

	// StateOpen blocks requests until the reopen timeout passes.
	StateOpen

	// StateHalfOpen lets a limited number of probes through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	// MaxFailures is how many consecutive failures open the circuit.
	MaxFailures int

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// HalfOpenLimit is how many consecutive probe successes close the
	// circuit, and also the concurrent probe cap.
	HalfOpenLimit int
}

// Breaker is a consecutive-failure circuit breaker guarding one upstream.
//
// Transitions: closed opens after MaxFailures consecutive failures; open
// half-opens after Timeout; half-open closes after HalfOpenLimit consecutive
// successes and reopens on any failure.
type Breaker struct {
	mu          sync.RWMutex
	state       State
	failures    int
	successes   int
	probes      int
	lastFailure time.Time
	cfg         BreakerConfig

	onStateChange func(from, to State)

	// now is overridable for tests.
	now func() time.Time
}

// NewBreaker creates a circuit breaker in the closed state.
func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{state: StateClosed, cfg: cfg, now: time.Now}
}

// OnStateChange registers a callback invoked on every transition.
func (b *Breaker) OnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Allow reports whether a request may proceed, transitioning open to
// half-open once the timeout has passed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true

	case StateOpen:
		if b.now().Sub(b.lastFailure) >= b.cfg.Timeout {
			b.transitionTo(StateHalfOpen)
			b.probes = 1
			return true
		}
		return false

	case StateHalfOpen:
		if b.probes >= b.cfg.HalfOpenLimit {
			return false
		}
		b.probes++
		return true

	default:
		return false
	}
}

// RecordSuccess notes a successful request.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0

	case StateHalfOpen:
		b.probes--
		b.successes++
		if b.successes >= b.cfg.HalfOpenLimit {
			b.transitionTo(StateClosed)
		}
	}
}

// RecordFailure notes a failed request. Any failure while half-open reopens
// the circuit immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.transitionTo(StateOpen)
		}

	case StateHalfOpen:
		b.probes--
		b.transitionTo(StateOpen)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// transitionTo must be called with the lock held.
func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}

	prev := b.state
	b.state = next
	b.failures = 0
	b.successes = 0

	if b.onStateChange != nil {
		// Off the lock so a slow callback cannot stall requests.
		go b.onStateChange(prev, next)
	}
}
