// SPDX-License-Identifier: MIT

// Package resilience guards upstream calls against cascading failures.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/satchel/internal/log"
)

// State represents the breaker state.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// ErrOpen is returned while the breaker refuses calls.
var ErrOpen = errors.New("circuit breaker is open")

// clock abstracts time operations for testability.
type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Breaker refuses calls after repeated upstream failures, probing again once
// the reset timeout elapses. It never retries on the caller's behalf.
type Breaker struct {
	mu           sync.Mutex
	name         string
	state        State
	failures     int
	threshold    int
	resetTimeout time.Duration
	openedAt     time.Time
	clock        clock
	countable    func(error) bool
	logger       zerolog.Logger
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock substitutes the time source, for tests.
func WithClock(c clock) Option {
	return func(b *Breaker) { b.clock = c }
}

// WithFailureClassifier restricts which errors count against the threshold.
// Errors the classifier rejects pass through without touching the failure
// count; only a nil classifier counts every error.
func WithFailureClassifier(f func(error) bool) Option {
	return func(b *Breaker) { b.countable = f }
}

// NewBreaker creates a breaker. Non-positive threshold or resetTimeout fall
// back to 3 failures and 30 seconds.
func NewBreaker(name string, threshold int, resetTimeout time.Duration, opts ...Option) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	b := &Breaker{
		name:         name,
		state:        StateClosed,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		clock:        realClock{},
		logger:       log.WithComponent("breaker").With().Str("breaker", name).Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs fn respecting the breaker state. Errors the failure
// classifier rejects leave the breaker state untouched.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allowRequest() {
		return ErrOpen
	}
	if err := fn(); err != nil {
		if b.countable == nil || b.countable(err) {
			b.recordFailure()
		}
		return err
	}
	b.recordSuccess()
	return nil
}

func (b *Breaker) allowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.clock.Now().Sub(b.openedAt) > b.resetTimeout {
			b.transitionTo(StateHalfOpen)
			return true
		}
		return false
	default: // StateHalfOpen: allow the probe
		return true
	}
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen {
		b.transitionTo(StateOpen)
		return
	}
	if b.state == StateClosed && b.failures >= b.threshold {
		b.transitionTo(StateOpen)
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state != StateClosed {
		b.transitionTo(StateClosed)
	}
}

// transitionTo changes state. Caller must hold the lock.
func (b *Breaker) transitionTo(newState State) {
	if b.state == newState {
		return
	}
	b.logger.Info().
		Str(log.FieldOldState, string(b.state)).
		Str(log.FieldNewState, string(newState)).
		Msg("circuit breaker state change")
	b.state = newState
	if newState == StateOpen {
		b.openedAt = b.clock.Now()
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
