// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ManuGH/satchel/internal/log"
)

// SceneLoader drives paginated scene fetching for one list view, pairing a
// Client with the view's PageState. The upstream has no wire-level
// cancellation, so a fetch that was superseded while in flight is abandoned:
// its result is discarded and the state left untouched.
type SceneLoader struct {
	client      *Client
	sceneFilter any

	mu      sync.Mutex
	state   *PageState[Scene]
	current string // request ID of the newest fetch; older results are dropped
}

// NewSceneLoader creates a loader over a fresh PageState.
func NewSceneLoader(client *Client, pageSize int, sceneFilter any, filters ...Predicate[Scene]) *SceneLoader {
	return &SceneLoader{
		client:      client,
		sceneFilter: sceneFilter,
		state:       NewPageState(pageSize, Scene.Key, filters...),
	}
}

// LoadNextPage fetches and merges the next page. It returns the merged items
// and whether more pages are expected. A result that arrives after a newer
// load started is dropped without mutating state.
func (l *SceneLoader) LoadNextPage(ctx context.Context) ([]Scene, bool, error) {
	l.mu.Lock()
	if !l.state.HasMore() || l.state.InFlight() {
		items, more := l.state.Items(), l.state.HasMore()
		l.mu.Unlock()
		return items, more, nil
	}
	requestID := uuid.NewString()
	l.current = requestID
	l.state.SetInFlight(true)
	filter := FindFilter{Page: l.state.Page(), PerPage: l.state.pageSize}
	l.mu.Unlock()

	fctx := log.ContextWithRequestID(ctx, requestID)
	res, err := l.client.FindScenes(fctx, filter, l.sceneFilter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != requestID {
		// A newer load superseded this one; its outcome no longer matters.
		return l.state.Items(), l.state.HasMore(), nil
	}
	l.state.SetInFlight(false)
	if err != nil {
		logger := log.WithComponentFromContext(fctx, "loader")
		logger.Warn().
			Err(err).Int("page", filter.Page).Msg("scene page fetch failed")
		return l.state.Items(), l.state.HasMore(), err
	}
	l.state.AppendPage(res.Scenes)
	return l.state.Items(), l.state.HasMore(), nil
}

// Reset clears accumulated items and invalidates any in-flight fetch.
func (l *SceneLoader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = ""
	l.state = NewPageState(l.state.pageSize, Scene.Key, l.state.filters...)
}

// Items returns the current merged set.
func (l *SceneLoader) Items() []Scene {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Items()
}
