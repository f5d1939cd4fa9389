// SPDX-License-Identifier: MIT

package player

import (
	"sync"

	"github.com/ManuGH/satchel/internal/stream"
)

type seekRequest struct {
	seconds         float64
	toleranceBefore float64
	toleranceAfter  float64
}

// fakeDecoder is a scriptable in-memory decoder. Seeks complete
// synchronously unless manual completion is enabled.
type fakeDecoder struct {
	mu   sync.Mutex
	sink DecoderEvents

	loadCount  int
	lastTarget stream.PlaybackTarget
	headers    map[string]string

	playing  bool
	muted    bool
	released bool

	seeks       []seekRequest
	seekResults []bool       // consumed per seek; defaults to success
	manualSeeks bool         // when set, completions are held in pending
	pending     []func(bool) // held completions

	duration float64
	buffered float64
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{}
}

func (f *fakeDecoder) factory() DecoderFactory {
	return func(sink DecoderEvents) Decoder {
		f.mu.Lock()
		f.sink = sink
		f.mu.Unlock()
		return f
	}
}

func (f *fakeDecoder) Load(target stream.PlaybackTarget, headers map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCount++
	f.lastTarget = target
	f.headers = headers
	f.released = false
}

func (f *fakeDecoder) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
}

func (f *fakeDecoder) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
}

func (f *fakeDecoder) Seek(seconds, toleranceBefore, toleranceAfter float64, done func(ok bool)) {
	f.mu.Lock()
	f.seeks = append(f.seeks, seekRequest{seconds, toleranceBefore, toleranceAfter})
	ok := true
	if len(f.seekResults) > 0 {
		ok = f.seekResults[0]
		f.seekResults = f.seekResults[1:]
	}
	if f.manualSeeks {
		f.pending = append(f.pending, done)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	done(ok)
}

// completeSeek releases the oldest held seek completion.
func (f *fakeDecoder) completeSeek(ok bool) {
	f.mu.Lock()
	done := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()
	done(ok)
}

func (f *fakeDecoder) SetMuted(muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
}

func (f *fakeDecoder) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
	f.playing = false
}

func (f *fakeDecoder) Position() float64 { return 0 }

func (f *fakeDecoder) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *fakeDecoder) Buffered() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffered
}

func (f *fakeDecoder) isPlaying() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

func (f *fakeDecoder) isReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func (f *fakeDecoder) seekCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seeks)
}

func (f *fakeDecoder) lastSeek() seekRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seeks[len(f.seeks)-1]
}

func (f *fakeDecoder) loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadCount
}
