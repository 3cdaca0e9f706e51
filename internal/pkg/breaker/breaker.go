// Package breaker implements the per-capability circuit breaker guarding
// every unreliable downstream call in the system.
//
// Each breaker tracks call outcomes in a count-based rolling window. When
// the observed failure rate reaches the threshold (after a minimum number
// of calls), the breaker opens and short-circuits callers with ErrOpen,
// a distinct outcome from a downstream failure, so callers can tell "not
// attempted" from "attempted and failed". After the open timeout a
// limited number of trial calls probe recovery.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when a call is short-circuited because the breaker
// judged the capability unhealthy. The wrapped operation was not attempted.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker's current mode.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Settings tunes one breaker instance. Zero values fall back to the
// package defaults.
type Settings struct {
	// FailureRateThreshold in (0,1]; the breaker opens when the failure
	// rate over the window meets or exceeds it. Default 0.5.
	FailureRateThreshold float64
	// WindowSize is the number of most-recent outcomes considered.
	// Default 100.
	WindowSize int
	// MinimumCalls must be recorded before the threshold is evaluated.
	// Default 100.
	MinimumCalls int
	// OpenTimeout is how long the breaker stays open before allowing
	// trial calls. Default 60s.
	OpenTimeout time.Duration
	// HalfOpenMaxCalls is the number of trial calls permitted while
	// half-open. Default 10.
	HalfOpenMaxCalls int
	// CallTimeout bounds each wrapped call; an expired call counts as a
	// failure. Zero disables the extra deadline.
	CallTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.FailureRateThreshold <= 0 {
		s.FailureRateThreshold = 0.5
	}
	if s.WindowSize <= 0 {
		s.WindowSize = 100
	}
	if s.MinimumCalls <= 0 {
		s.MinimumCalls = 100
	}
	if s.MinimumCalls > s.WindowSize {
		s.MinimumCalls = s.WindowSize
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 60 * time.Second
	}
	if s.HalfOpenMaxCalls <= 0 {
		s.HalfOpenMaxCalls = 10
	}
	return s
}

// Breaker guards one downstream capability. Safe for concurrent use; the
// rolling window and state transitions are mutated under a single mutex,
// which is never held across the wrapped call.
type Breaker struct {
	name     string
	settings Settings

	mu              sync.Mutex
	state           State
	window          []bool // true = failure
	windowIdx       int
	windowCount     int
	failures        int
	openedAt        time.Time
	halfOpenPermits int
}

// New creates a breaker for the named capability.
func New(name string, settings Settings) *Breaker {
	s := settings.withDefaults()
	b := &Breaker{
		name:     name,
		settings: s,
		state:    StateClosed,
		window:   make([]bool, s.WindowSize),
	}
	observeState(name, StateClosed)
	return b
}

// Name returns the capability name the breaker guards.
func (b *Breaker) Name() string { return b.name }

// State reports the current mode, applying the open→half-open transition
// if the open timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeProbe(time.Now())
	return b.state
}

// Execute runs fn under the breaker. It returns ErrOpen without invoking
// fn when short-circuited; otherwise it returns fn's error and records the
// outcome. A call that outlives CallTimeout is cancelled and recorded as a
// failure.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.acquire(); err != nil {
		observeCall(b.name, outcomeShortCircuit)
		return err
	}

	callCtx := ctx
	if b.settings.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.settings.CallTimeout)
		defer cancel()
	}

	err := fn(callCtx)
	if err == nil && callCtx.Err() != nil {
		// The call returned nil after its deadline fired; treat it as
		// timed out rather than trusting a late success.
		err = callCtx.Err()
	}

	b.record(err == nil)
	if err == nil {
		observeCall(b.name, outcomeSuccess)
	} else {
		observeCall(b.name, outcomeFailure)
	}
	return err
}

// acquire decides whether a call may proceed.
func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeProbe(time.Now())

	switch b.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.halfOpenPermits <= 0 {
			return ErrOpen
		}
		b.halfOpenPermits--
	}
	return nil
}

// record feeds one outcome back into the state machine.
func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		// A single trial outcome decides: success closes, failure reopens.
		if success {
			b.toClosed()
		} else {
			b.toOpen(time.Now())
		}
	case StateClosed:
		b.push(!success)
		if b.windowCount >= b.settings.MinimumCalls && b.failureRate() >= b.settings.FailureRateThreshold {
			b.toOpen(time.Now())
		}
	case StateOpen:
		// Late result from a call admitted before opening; ignore.
	}
}

// maybeProbe moves OPEN to HALF_OPEN once the open timeout has elapsed.
// Caller holds b.mu.
func (b *Breaker) maybeProbe(now time.Time) {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.settings.OpenTimeout {
		b.state = StateHalfOpen
		b.halfOpenPermits = b.settings.HalfOpenMaxCalls
		observeState(b.name, StateHalfOpen)
	}
}

// push records an outcome in the ring buffer. Caller holds b.mu.
func (b *Breaker) push(failure bool) {
	if b.windowCount == len(b.window) {
		// Evict the slot we are about to overwrite.
		if b.window[b.windowIdx] {
			b.failures--
		}
	} else {
		b.windowCount++
	}
	b.window[b.windowIdx] = failure
	if failure {
		b.failures++
	}
	b.windowIdx = (b.windowIdx + 1) % len(b.window)
}

func (b *Breaker) failureRate() float64 {
	if b.windowCount == 0 {
		return 0
	}
	return float64(b.failures) / float64(b.windowCount)
}

// toOpen and toClosed are the only state writers besides maybeProbe.
// Caller holds b.mu.
func (b *Breaker) toOpen(now time.Time) {
	b.state = StateOpen
	b.openedAt = now
	b.halfOpenPermits = 0
	observeState(b.name, StateOpen)
}

func (b *Breaker) toClosed() {
	b.state = StateClosed
	b.windowIdx = 0
	b.windowCount = 0
	b.failures = 0
	observeState(b.name, StateClosed)
}

// Do is a typed convenience over Execute for calls that produce a value.
func Do[T any](ctx context.Context, b *Breaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := b.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
