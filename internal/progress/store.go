// SPDX-License-Identifier: MIT

// Package progress persists playback resume positions.
//
// Bookmarks are plain key-value records: "video_progress_<mediaId>" mapping
// to a position in seconds. This is the only state the client persists.
package progress

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no bookmark exists for a media ID.
var ErrNotFound = errors.New("no progress bookmark")

const keyPrefix = "video_progress_"

// Store reads and writes resume positions keyed by media ID.
type Store interface {
	// Get returns the saved position in seconds, or ErrNotFound.
	Get(ctx context.Context, mediaID string) (float64, error)
	// Put saves the position in seconds.
	Put(ctx context.Context, mediaID string, seconds float64) error
	// Delete removes the bookmark, e.g. once the item is watched to the end.
	Delete(ctx context.Context, mediaID string) error
	// Close releases underlying resources.
	Close() error
}

func bookmarkKey(mediaID string) string {
	return keyPrefix + mediaID
}

// MemoryStore is an in-memory Store for tests and the "memory" backend.
type MemoryStore struct {
	mu        sync.RWMutex
	bookmarks map[string]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookmarks: make(map[string]float64)}
}

func (s *MemoryStore) Get(_ context.Context, mediaID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.bookmarks[bookmarkKey(mediaID)]
	if !ok {
		return 0, ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) Put(_ context.Context, mediaID string, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookmarks[bookmarkKey(mediaID)] = seconds
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, mediaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookmarks, bookmarkKey(mediaID))
	return nil
}

func (s *MemoryStore) Close() error { return nil }
