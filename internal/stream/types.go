// SPDX-License-Identifier: MIT

package stream

// MediaRef identifies a playable unit as described by server metadata.
// Immutable once constructed; passed by value.
type MediaRef struct {
	ID             string
	Codec          string  // video codec name, empty when the server has not probed the file
	DurationHint   float64 // seconds; zero when absent or not yet scanned
	BaseStreamPath string  // server-provided progressive stream path
}

// PlaybackTarget is a fully resolved, ready-to-load stream descriptor.
// It has no identity of its own and is discarded after session setup.
type PlaybackTarget struct {
	URL          string
	StartSeconds float64 // 0 means start from the beginning
	EndSeconds   float64 // 0 means unbounded; bounds marker playback otherwise
	Resolution   string  // empty for direct play
	DirectPlay   bool
}

// Policy captures the playback-capability decision inputs.
type Policy struct {
	// ForceTranscode disables direct play regardless of codec.
	ForceTranscode bool
	// Resolution is the transcode resolution tag; empty means ResolutionOriginal.
	Resolution string
}

// ResolutionOriginal requests the source resolution from the transcoder.
const ResolutionOriginal = "ORIGINAL"
