// SPDX-License-Identifier: MIT

package player

import "github.com/ManuGH/satchel/internal/stream"

// DecoderEvents receives decoder callbacks. Implementations must treat the
// calling goroutine as foreign and marshal onto their own queue.
type DecoderEvents interface {
	// OnReady fires once the decoder can render; duration may still be
	// zero if the container has not reported it.
	OnReady(duration float64)
	// OnPosition fires periodically while playing.
	OnPosition(seconds float64)
	// OnBuffered reports the end of the loaded time range.
	OnBuffered(seconds float64)
	// OnEnded fires when playback reaches the end of the media.
	OnEnded()
	// OnFailed fires on an unrecoverable decoder error.
	OnFailed(err error)
}

// Decoder abstracts the platform media decoder. Exactly one session owns a
// decoder at a time.
type Decoder interface {
	// Load starts asynchronous preparation of the target. Completion is
	// reported through OnReady or OnFailed.
	Load(target stream.PlaybackTarget, headers map[string]string)
	Play()
	Pause()
	// Seek moves the playhead. Zero tolerances request an exact-frame seek.
	// done reports whether the decoder accepted the seek.
	Seek(seconds, toleranceBefore, toleranceAfter float64, done func(ok bool))
	SetMuted(muted bool)
	// Release drops the loaded item entirely. A released decoder is
	// inaudible on every platform, unlike a merely paused one.
	Release()
	Position() float64
	Duration() float64
	Buffered() float64
}

// DecoderFactory constructs a decoder delivering events to sink.
type DecoderFactory func(sink DecoderEvents) Decoder

// protocolHeaders are required by the upstream media endpoints.
func protocolHeaders() map[string]string {
	return map[string]string{
		"User-Agent": "satchel/1.0",
		"Accept":     "*/*",
		"Connection": "keep-alive",
	}
}
