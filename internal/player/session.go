// SPDX-License-Identifier: MIT

// Package player owns decoder lifetimes. A Session wraps exactly one decoder
// handle; the Registry guarantees at most one session is audible at a time.
package player

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/satchel/internal/log"
	"github.com/ManuGH/satchel/internal/progress"
	"github.com/ManuGH/satchel/internal/stream"
)

// State is a playback session lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
	StateFailed  State = "failed"
)

const seekTolerance = 0.5 // seconds, both directions

// Status is an observable snapshot of a session.
type Status struct {
	State      State
	Seeking    bool
	Position   float64
	Duration   float64
	Buffering  float64 // ratio of duration loaded, 0..1
	Muted      bool
	LoadedItem bool // false once the decoder's item has been released
	Reason     string
}

// Session drives one decoder for one screen-stack entry. All mutation runs
// on the registry's dispatch queue; public methods may be called from any
// goroutine. Destroy a session with Close, which releases the decoder and
// deregisters it.
type Session struct {
	id       string
	registry *Registry
	q        *dispatchQueue
	decoder  Decoder
	logger   zerolog.Logger

	tracker *progress.Tracker
	unit    func() float64 // uniform [0,1) source for random seeks

	// Everything below is queue-confined.
	target      stream.PlaybackTarget
	state       State
	seeking     bool
	wasPlaying  bool // playing state to restore after the current seek
	seekGen     int  // last-seek-wins generation
	pendingPlay bool // play once a reacquisition load finishes

	markerEnd   float64
	markerArmed bool

	position float64
	duration float64
	buffered float64
	muted    bool
	released bool
	closed   bool
	reason   string

	listener func(Status)
}

// SessionOptions configures a Session.
type SessionOptions struct {
	// MediaID enables progress bookmarking when Store is also set.
	MediaID string
	// Store persists resume positions; nil disables bookmarking.
	Store progress.Store
	// Rand overrides the random source for seeks, for tests. Must return
	// values in [0, 1).
	Rand func() float64
	// OnChange observes status snapshots. Called on the dispatch queue;
	// must not call back into the session synchronously.
	OnChange func(Status)
}

// NewSession constructs a session, acquires its decoder from factory and
// registers it.
func NewSession(registry *Registry, factory DecoderFactory, opts SessionOptions) *Session {
	s := &Session{
		id:       uuid.NewString(),
		registry: registry,
		q:        registry.queue,
		state:    StateIdle,
		unit:     opts.Rand,
		listener: opts.OnChange,
	}
	s.logger = log.WithComponent("player").With().Str(log.FieldSessionID, s.id).Logger()
	if s.unit == nil {
		s.unit = rand.Float64
	}
	if opts.Store != nil && opts.MediaID != "" {
		s.tracker = progress.NewTracker(opts.Store, opts.MediaID)
	}
	s.decoder = factory(sessionEvents{s})
	registry.register(s)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Load starts preparing the target. If the target carries no explicit start
// offset, the saved bookmark (if any) is used. Entering Loading silences
// every other registered session.
func (s *Session) Load(target stream.PlaybackTarget) {
	s.q.Dispatch(func() {
		if s.closed {
			return
		}
		if target.StartSeconds <= 0 && s.tracker != nil {
			target.StartSeconds = s.tracker.Resume(context.Background())
		}
		s.target = target
		s.released = false
		s.pendingPlay = false
		s.setMarkerWindow(target.EndSeconds)
		s.transition(StateLoading)
		s.registry.silenceOthers(s)
		s.decoder.Load(target, protocolHeaders())
	})
}

// Play resumes (or starts) playback, reacquiring the decoder item if it was
// released by a silence operation.
func (s *Session) Play() {
	s.q.Dispatch(func() {
		if s.closed || s.state == StateFailed {
			return
		}
		s.registry.silenceOthers(s)
		s.muted = false
		s.decoder.SetMuted(false)
		if s.released {
			// Re-acquisition: reload at the last known position.
			target := s.target
			target.StartSeconds = s.position
			s.released = false
			s.pendingPlay = true
			s.transition(StateLoading)
			s.decoder.Load(target, protocolHeaders())
			return
		}
		s.decoder.Play()
		s.transition(StatePlaying)
	})
}

// Pause halts playback without releasing the decoder item.
func (s *Session) Pause() {
	s.q.Dispatch(func() {
		if s.closed || s.state != StatePlaying {
			return
		}
		s.decoder.Pause()
		s.transition(StatePaused)
	})
}

// SeekPrecise performs a zero-tolerance seek, retrying once with a tolerant
// seek when the decoder rejects the exact frame (common near keyframe
// boundaries). Playback resumes afterwards if the session was playing.
func (s *Session) SeekPrecise(seconds float64) {
	s.q.Dispatch(func() {
		s.startSeek(seconds, true)
	})
}

// SeekRandom seeks to a statistically safe random position. It never blocks
// or fails on missing duration metadata: the buffered range, then a
// conservative default, stand in. Random seeks use a tolerant seek; they
// need responsiveness, not frame accuracy.
func (s *Session) SeekRandom() {
	s.q.Dispatch(func() {
		d := effectiveDuration(s.duration, s.buffered)
		target := randomSeekTarget(d, s.unit)
		s.logger.Debug().
			Float64(log.FieldDuration, d).
			Float64(log.FieldPosition, target).
			Msg("random seek")
		s.startSeek(target, false)
	})
}

// Status returns a consistent snapshot.
func (s *Session) Status() Status {
	var st Status
	s.q.Sync(func() { st = s.snapshot() })
	return st
}

// Close flushes progress, releases the decoder handle and deregisters the
// session. The session must not be used afterwards.
func (s *Session) Close() {
	s.q.Sync(func() {
		if s.closed {
			return
		}
		s.closed = true
		if s.tracker != nil && s.position > 0 && s.state != StateEnded {
			_ = s.tracker.Flush(context.Background(), s.position)
		}
		s.decoder.Release()
		s.released = true
		s.registry.deregister(s)
		s.transition(StateIdle)
	})
}

// --- queue-confined internals ---

func (s *Session) startSeek(seconds float64, precise bool) {
	switch s.state {
	case StateReady, StatePlaying, StatePaused:
	default:
		return
	}
	if !s.seeking {
		// A seek issued while one is in flight supersedes it but keeps the
		// original pre-seek playing intent.
		s.wasPlaying = s.state == StatePlaying
	}
	s.seeking = true
	s.seekGen++
	gen := s.seekGen
	if precise {
		s.decoder.Seek(seconds, 0, 0, func(ok bool) {
			s.q.Dispatch(func() { s.finishPreciseSeek(gen, seconds, ok) })
		})
		return
	}
	s.decoder.Seek(seconds, seekTolerance, seekTolerance, func(ok bool) {
		s.q.Dispatch(func() { s.finishSeek(gen, seconds, ok) })
	})
}

// finishPreciseSeek handles the zero-tolerance attempt, falling back to a
// tolerant seek once on failure.
func (s *Session) finishPreciseSeek(gen int, seconds float64, ok bool) {
	if gen != s.seekGen || s.closed {
		return // superseded: last seek wins
	}
	if ok {
		s.finishSeek(gen, seconds, true)
		return
	}
	s.logger.Debug().Float64(log.FieldPosition, seconds).Msg("exact seek rejected, retrying with tolerance")
	s.decoder.Seek(seconds, seekTolerance, seekTolerance, func(ok bool) {
		s.q.Dispatch(func() { s.finishSeek(gen, seconds, ok) })
	})
}

func (s *Session) finishSeek(gen int, seconds float64, ok bool) {
	if gen != s.seekGen || s.closed {
		return
	}
	s.seeking = false
	if !ok {
		s.notify()
		return
	}
	s.position = seconds
	s.rearmMarker()
	if s.wasPlaying && s.state != StatePlaying {
		s.decoder.Play()
		s.transition(StatePlaying)
		return
	}
	s.notify()
}

func (s *Session) setMarkerWindow(endOffset float64) {
	s.markerEnd = endOffset
	s.markerArmed = endOffset > 0
}

// rearmMarker re-enables the marker boundary after the playhead moved back
// before it, so a replay crosses it again.
func (s *Session) rearmMarker() {
	if s.markerEnd > 0 && s.position < s.markerEnd {
		s.markerArmed = true
	}
}

func (s *Session) onReady(duration float64) {
	if s.closed {
		return
	}
	if duration > 0 {
		s.duration = duration
	}
	if s.target.StartSeconds > 0 {
		// First frame shown must be the frame at the requested offset, so
		// the precise seek happens before Ready is exposed.
		s.position = s.target.StartSeconds
		s.wasPlaying = s.pendingPlay
		s.seeking = true
		s.seekGen++
		gen := s.seekGen
		s.decoder.Seek(s.target.StartSeconds, 0, 0, func(ok bool) {
			s.q.Dispatch(func() {
				s.transition(StateReady)
				s.finishPreciseSeek(gen, s.target.StartSeconds, ok)
			})
		})
		s.pendingPlay = false
		return
	}
	s.transition(StateReady)
	if s.pendingPlay {
		s.pendingPlay = false
		s.decoder.Play()
		s.transition(StatePlaying)
	}
}

func (s *Session) onPosition(seconds float64) {
	if s.closed {
		return
	}
	s.position = seconds
	if s.markerEnd > 0 {
		if s.state == StatePlaying && s.markerArmed && seconds >= s.markerEnd {
			// Fires once per forward crossing; re-arms below the boundary.
			s.markerArmed = false
			s.decoder.Pause()
			s.transition(StatePaused)
			return
		}
		s.rearmMarker()
	}
	if s.state == StatePlaying && s.tracker != nil {
		_ = s.tracker.Update(context.Background(), seconds)
	}
	s.notify()
}

func (s *Session) onBuffered(seconds float64) {
	if s.closed {
		return
	}
	s.buffered = seconds
	s.notify()
}

func (s *Session) onEnded() {
	if s.closed {
		return
	}
	if s.tracker != nil {
		_ = s.tracker.Clear(context.Background())
	}
	s.transition(StateEnded)
}

func (s *Session) onFailed(err error) {
	if s.closed {
		return
	}
	s.reason = err.Error()
	s.logger.Warn().Err(err).Msg("decoder failed")
	// No automatic retry: a reload is an explicit caller decision.
	s.transition(StateFailed)
}

// silence is the registry's stop operation: paused, muted and with the
// decoder item fully released, not merely paused.
func (s *Session) silence() {
	if s.closed {
		return
	}
	if s.state == StatePlaying {
		s.decoder.Pause()
		s.state = StatePaused
	}
	s.muted = true
	s.decoder.SetMuted(true)
	if !s.released {
		s.decoder.Release()
		s.released = true
	}
	s.notify()
}

func (s *Session) isAudible() bool {
	return s.state == StatePlaying && !s.muted && !s.released
}

func (s *Session) transition(next State) {
	if s.state == next {
		s.notify()
		return
	}
	s.logger.Debug().
		Str(log.FieldOldState, string(s.state)).
		Str(log.FieldNewState, string(next)).
		Msg("session state change")
	s.state = next
	s.notify()
}

func (s *Session) snapshot() Status {
	st := Status{
		State:      s.state,
		Seeking:    s.seeking,
		Position:   s.position,
		Duration:   s.duration,
		Muted:      s.muted,
		LoadedItem: !s.released,
		Reason:     s.reason,
	}
	if s.duration > 0 {
		st.Buffering = clamp(s.buffered/s.duration, 0, 1)
	}
	return st
}

func (s *Session) notify() {
	if s.listener != nil {
		s.listener(s.snapshot())
	}
}

// sessionEvents marshals decoder callbacks onto the dispatch queue.
type sessionEvents struct{ s *Session }

func (e sessionEvents) OnReady(duration float64) {
	e.s.q.Dispatch(func() { e.s.onReady(duration) })
}

func (e sessionEvents) OnPosition(seconds float64) {
	e.s.q.Dispatch(func() { e.s.onPosition(seconds) })
}

func (e sessionEvents) OnBuffered(seconds float64) {
	e.s.q.Dispatch(func() { e.s.onBuffered(seconds) })
}

func (e sessionEvents) OnEnded() {
	e.s.q.Dispatch(func() { e.s.onEnded() })
}

func (e sessionEvents) OnFailed(err error) {
	e.s.q.Dispatch(func() { e.s.onFailed(err) })
}
