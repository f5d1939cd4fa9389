// SPDX-License-Identifier: MIT

package catalog

import "encoding/json"

// Scene is a playable catalog entry as returned by the upstream service.
type Scene struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`

	Files []SceneFile `json:"files,omitempty"`
	Paths ScenePaths  `json:"paths"`
	Tags  []Tag       `json:"tags,omitempty"`
}

// Key is the dedupe identity of a scene.
func (s Scene) Key() string { return s.ID }

// PrimaryFile returns the first file entry, or a zero value if none is loaded.
func (s Scene) PrimaryFile() SceneFile {
	if len(s.Files) == 0 {
		return SceneFile{}
	}
	return s.Files[0]
}

// TagNames returns the scene's tag names in catalog order.
func (s Scene) TagNames() []string {
	names := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		names = append(names, t.Name)
	}
	return names
}

// SceneFile describes one media file backing a scene. Duration may be zero
// when the server has not finished scanning the file.
type SceneFile struct {
	Duration   float64 `json:"duration"`
	VideoCodec string  `json:"video_codec"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
}

// ScenePaths holds server-provided endpoint paths for a scene.
type ScenePaths struct {
	Stream     string `json:"stream"`
	Screenshot string `json:"screenshot,omitempty"`
	Preview    string `json:"preview,omitempty"`
	Sprite     string `json:"sprite,omitempty"`
	VTT        string `json:"vtt,omitempty"`
}

// Tag is a catalog label attached to scenes and markers.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Marker is a bookmarked timestamp within a scene, optionally bounded.
type Marker struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Seconds    float64  `json:"seconds"`
	EndSeconds *float64 `json:"end_seconds,omitempty"`
	Scene      Scene    `json:"scene"`
	PrimaryTag Tag      `json:"primary_tag"`
}

// Key is the dedupe identity of a marker.
func (m Marker) Key() string { return m.ID }

// SavedFilter is a server-side stored query definition.
type SavedFilter struct {
	ID     string          `json:"id"`
	Mode   string          `json:"mode"`
	Name   string          `json:"name"`
	Filter json.RawMessage `json:"object_filter,omitempty"`
}

// FindFilter matches the upstream pagination/sort input object.
type FindFilter struct {
	Query     string `json:"q,omitempty"`
	Page      int    `json:"page"`
	PerPage   int    `json:"per_page"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"` // "ASC" or "DESC"
}

// ScenesResult is the payload of a findScenes operation.
type ScenesResult struct {
	Count  int     `json:"count"`
	Scenes []Scene `json:"scenes"`
}

// MarkersResult is the payload of a findSceneMarkers operation.
type MarkersResult struct {
	Count   int      `json:"count"`
	Markers []Marker `json:"scene_markers"`
}

