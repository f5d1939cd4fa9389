// SPDX-License-Identifier: MIT

package player

import (
	"github.com/rs/zerolog"

	"github.com/ManuGH/satchel/internal/log"
)

// Registry tracks every live Session and enforces that at most one is
// audible at any time. It is constructed explicitly and injected into each
// session rather than discovered globally, so tests can substitute it and
// no hidden process state exists.
//
// All mutation runs on the registry's dispatch queue.
type Registry struct {
	queue    *dispatchQueue
	sessions map[string]*Session
	logger   zerolog.Logger
}

// NewRegistry creates a registry and starts its dispatch loop.
func NewRegistry() *Registry {
	return &Registry{
		queue:    newDispatchQueue(),
		sessions: make(map[string]*Session),
		logger:   log.WithComponent("registry"),
	}
}

// register is called by NewSession.
func (r *Registry) register(s *Session) {
	r.queue.Dispatch(func() {
		r.sessions[s.id] = s
		r.logger.Debug().Str(log.FieldSessionID, s.id).Int("sessions", len(r.sessions)).Msg("session registered")
	})
}

// deregister is called from Session.Close, already on the queue.
func (r *Registry) deregister(s *Session) {
	delete(r.sessions, s.id)
	r.logger.Debug().Str(log.FieldSessionID, s.id).Int("sessions", len(r.sessions)).Msg("session deregistered")
}

// silenceOthers stops every session except keep. Queue-confined; sessions
// call it from their own queued operations.
func (r *Registry) silenceOthers(keep *Session) {
	for _, other := range r.sessions {
		if keep != nil && other.id == keep.id {
			continue
		}
		other.silence()
	}
}

// SilenceAllExcept pauses, mutes and releases every registered session other
// than keep. After it returns no other session holds a loaded decoder item.
func (r *Registry) SilenceAllExcept(keep *Session) {
	r.queue.Sync(func() { r.silenceOthers(keep) })
}

// SilenceAll stops every registered session, e.g. when the app backgrounds.
func (r *Registry) SilenceAll() {
	r.queue.Sync(func() { r.silenceOthers(nil) })
}

// AudibleCount reports how many registered sessions are currently audible.
// The registry's invariant keeps this at zero or one.
func (r *Registry) AudibleCount() int {
	var n int
	r.queue.Sync(func() {
		for _, s := range r.sessions {
			if s.isAudible() {
				n++
			}
		}
	})
	return n
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	var n int
	r.queue.Sync(func() { n = len(r.sessions) })
	return n
}

// Close silences and deregisters every session, then stops the dispatch
// loop. Used on process teardown; nothing persists.
func (r *Registry) Close() {
	r.queue.Sync(func() {
		for _, s := range r.sessions {
			s.silence()
			s.closed = true
		}
		r.sessions = make(map[string]*Session)
	})
	r.queue.Close()
}
