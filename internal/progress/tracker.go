// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// WriteInterval is the minimum spacing between bookmark writes while playing.
const WriteInterval = 5 * time.Second

// Tracker throttles bookmark writes for one media item. Position updates
// arrive on every playhead tick; only one write per WriteInterval reaches
// the store. Flush bypasses the throttle for teardown.
type Tracker struct {
	store   Store
	mediaID string
	limiter *rate.Limiter
}

// NewTracker creates a tracker writing through to store.
func NewTracker(store Store, mediaID string) *Tracker {
	return &Tracker{
		store:   store,
		mediaID: mediaID,
		limiter: rate.NewLimiter(rate.Every(WriteInterval), 1),
	}
}

// Update records the position unless a write landed within WriteInterval.
func (t *Tracker) Update(ctx context.Context, seconds float64) error {
	if !t.limiter.Allow() {
		return nil
	}
	return t.store.Put(ctx, t.mediaID, seconds)
}

// Flush records the position unconditionally.
func (t *Tracker) Flush(ctx context.Context, seconds float64) error {
	return t.store.Put(ctx, t.mediaID, seconds)
}

// Resume returns the saved position, or 0 when none exists.
func (t *Tracker) Resume(ctx context.Context) float64 {
	seconds, err := t.store.Get(ctx, t.mediaID)
	if err != nil {
		return 0
	}
	return seconds
}

// Clear removes the bookmark, e.g. when the item was watched to the end.
func (t *Tracker) Clear(ctx context.Context) error {
	return t.store.Delete(ctx, t.mediaID)
}
