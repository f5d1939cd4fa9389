// SPDX-License-Identifier: MIT

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const sceneFields = `
id
title
date
files { duration video_codec width height }
paths { stream screenshot preview sprite vtt }
tags { id name }`

const queryFindScenes = `
query FindScenes($filter: FindFilterType, $scene_filter: SceneFilterType) {
  findScenes(filter: $filter, scene_filter: $scene_filter) {
    count
    scenes {` + sceneFields + `
    }
  }
}`

// queryFindScenesMinimal is the deliberately low-risk shape used when the full
// query fails to decode. It requests only what playback strictly needs.
const queryFindScenesMinimal = `
query FindScenes($filter: FindFilterType) {
  findScenes(filter: $filter) {
    count
    scenes {
      id
      title
      paths { stream }
    }
  }
}`

const queryFindMarkers = `
query FindSceneMarkers($filter: FindFilterType, $scene_marker_filter: SceneMarkerFilterType) {
  findSceneMarkers(filter: $filter, scene_marker_filter: $scene_marker_filter) {
    count
    scene_markers {
      id
      title
      seconds
      end_seconds
      primary_tag { id name }
      scene {` + sceneFields + `
      }
    }
  }
}`

const queryAllTags = `
query AllTags {
  allTags { id name }
}`

const queryFindSavedFilters = `
query FindSavedFilters($mode: FilterMode) {
  findSavedFilters(mode: $mode) {
    id
    mode
    name
    object_filter
  }
}`

type scenesVariables struct {
	Filter      FindFilter `json:"filter"`
	SceneFilter any        `json:"scene_filter,omitempty"`
}

type markersVariables struct {
	Filter       FindFilter `json:"filter"`
	MarkerFilter any        `json:"scene_marker_filter,omitempty"`
}

// FindScenes fetches one page of scenes. On a structural decode failure of the
// full query it retries once with the minimal shape before surfacing the error.
func (c *Client) FindScenes(ctx context.Context, filter FindFilter, sceneFilter any) (*ScenesResult, error) {
	vars := scenesVariables{Filter: filter, SceneFilter: sceneFilter}
	res, err := execute[ScenesResult](ctx, c, "FindScenes", "findScenes", vars, queryFindScenes)
	if err == nil {
		return res, nil
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		return nil, err
	}

	c.logger.Warn().Err(err).Msg("full scene query failed to decode, retrying with minimal shape")
	res, minErr := execute[ScenesResult](ctx, c, "FindScenes", "findScenes",
		scenesVariables{Filter: filter}, queryFindScenesMinimal)
	if minErr != nil {
		return nil, err // surface the original failure, not the fallback's
	}
	return res, nil
}

// FindMarkers fetches one page of scene markers.
func (c *Client) FindMarkers(ctx context.Context, filter FindFilter, markerFilter any) (*MarkersResult, error) {
	vars := markersVariables{Filter: filter, MarkerFilter: markerFilter}
	return expectResult(execute[MarkersResult](ctx, c, "FindSceneMarkers", "findSceneMarkers", vars, queryFindMarkers))
}

// AllTags fetches the full tag list. Results are cached; concurrent callers
// share a single in-flight request.
func (c *Client) AllTags(ctx context.Context) ([]Tag, error) {
	return lookup[[]Tag](ctx, c, "allTags", func(ctx context.Context) (*[]Tag, error) {
		return execute[[]Tag](ctx, c, "AllTags", "allTags", struct{}{}, queryAllTags)
	})
}

// SavedFilters fetches stored filters for the given mode ("SCENES", "SCENE_MARKERS").
// Results are cached per mode.
func (c *Client) SavedFilters(ctx context.Context, mode string) ([]SavedFilter, error) {
	key := "savedFilters:" + mode
	return lookup[[]SavedFilter](ctx, c, key, func(ctx context.Context) (*[]SavedFilter, error) {
		vars := struct {
			Mode string `json:"mode"`
		}{Mode: mode}
		return execute[[]SavedFilter](ctx, c, "FindSavedFilters", "findSavedFilters", vars, queryFindSavedFilters)
	})
}

// lookup serves small, stable result sets through the TTL cache, collapsing
// concurrent fetches for the same key into one upstream call.
func lookup[T any](ctx context.Context, c *Client, key string, fetch func(context.Context) (*T, error)) (T, error) {
	var zero T
	if v, ok := c.cache.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, *res, c.cacheTTL)
		return *res, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func expectResult[T any](res *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrEmptyResponse)
	}
	return res, nil
}

// WaitBeforeRetry sleeps with exponential backoff before retry attempt n
// (0-based), honouring context cancellation. Callers that choose to retry
// ServerError responses should use it between attempts.
func WaitBeforeRetry(ctx context.Context, attempt int) error {
	backoff := time.Duration(attempt*attempt+1) * 500 * time.Millisecond
	select {
	case <-time.After(backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
