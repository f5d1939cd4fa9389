// SPDX-License-Identifier: MIT

package stream

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedResolver(apiKey string) *Resolver {
	r := NewResolver(apiKey)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r
}

func TestResolveDirectPlay(t *testing.T) {
	r := fixedResolver("k3y")
	ref := MediaRef{
		ID:             "42",
		Codec:          "hevc",
		BaseStreamPath: "http://media.local/scene/42/stream",
	}

	target, err := r.Resolve(ref, 0, 0, Policy{})
	require.NoError(t, err)

	assert.True(t, target.DirectPlay)
	assert.NotContains(t, target.URL, ".m3u8")
	assert.NotContains(t, target.URL, "resolution=")
	assert.Contains(t, target.URL, "apikey=k3y")
	assert.Contains(t, target.URL, "_ts=1700000000")
}

func TestResolveTranscodeWhenCodecUnknown(t *testing.T) {
	r := fixedResolver("k3y")
	ref := MediaRef{
		ID:             "42",
		BaseStreamPath: "http://media.local/scene/42/stream",
	}

	target, err := r.Resolve(ref, 0, 0, Policy{})
	require.NoError(t, err)

	u, err := url.Parse(target.URL)
	require.NoError(t, err)
	assert.False(t, target.DirectPlay)
	assert.True(t, strings.HasSuffix(u.Path, "stream.m3u8"), "got %s", u.Path)
	assert.Equal(t, "ORIGINAL", u.Query().Get("resolution"))
	assert.NotEmpty(t, u.Query().Get("_ts"))
}

func TestResolveForceTranscode(t *testing.T) {
	r := fixedResolver("k3y")
	ref := MediaRef{
		ID:             "42",
		Codec:          "h264",
		BaseStreamPath: "http://media.local/scene/42/stream",
	}

	target, err := r.Resolve(ref, 0, 0, Policy{ForceTranscode: true, Resolution: "FOUR_K"})
	require.NoError(t, err)

	assert.False(t, target.DirectPlay)
	assert.Contains(t, target.URL, "resolution=FOUR_K")
}

func TestResolveStartOffset(t *testing.T) {
	r := fixedResolver("k3y")
	ref := MediaRef{
		ID:             "42",
		Codec:          "vp9", // not in allow-list
		BaseStreamPath: "http://media.local/scene/42/stream",
	}

	target, err := r.Resolve(ref, 93.5, 120, Policy{})
	require.NoError(t, err)

	u, _ := url.Parse(target.URL)
	assert.Equal(t, "93.5", u.Query().Get("t"))
	assert.Equal(t, 93.5, target.StartSeconds)
	assert.Equal(t, 120.0, target.EndSeconds)
}

func TestResolveUnresolvable(t *testing.T) {
	r := fixedResolver("k3y")

	_, err := r.Resolve(MediaRef{ID: "42"}, 0, 0, Policy{})
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestAugmentIsIdempotent(t *testing.T) {
	r := fixedResolver("k3y")

	once := r.augment("http://media.local/scene/42/stream.m3u8", 30, "ORIGINAL")
	twice := r.augment(once, 30, "ORIGINAL")
	assert.Equal(t, once, twice)

	// No duplicated query parameters either.
	u, err := url.Parse(twice)
	require.NoError(t, err)
	for key, vals := range u.Query() {
		assert.Len(t, vals, 1, "parameter %s duplicated", key)
	}
}

func TestResolveManifestInputNormalises(t *testing.T) {
	r := fixedResolver("k3y")
	ref := MediaRef{
		ID:             "7",
		BaseStreamPath: "http://media.local/scene/7/stream.m3u8?resolution=STANDARD",
	}

	target, err := r.Resolve(ref, 0, 0, Policy{})
	require.NoError(t, err)

	u, _ := url.Parse(target.URL)
	assert.True(t, strings.HasSuffix(u.Path, "stream.m3u8"))
	assert.NotContains(t, u.Path, ".m3u8.m3u8")
	assert.Equal(t, "STANDARD", u.Query().Get("resolution"), "existing resolution preserved")
}

func TestAugmentMediaURL(t *testing.T) {
	r := fixedResolver("k3y")

	out := r.AugmentMediaURL("http://media.local/scene/42/sprite.vtt")
	u, err := url.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "k3y", u.Query().Get("apikey"))
	assert.NotEmpty(t, u.Query().Get("_ts"))

	assert.Empty(t, r.AugmentMediaURL(""))
}

func TestCanDirectPlayAllowList(t *testing.T) {
	tests := []struct {
		codec string
		want  bool
	}{
		{"h264", true},
		{"HEVC", true},
		{" hvc1 ", true},
		{"prores", true},
		{"vp9", false},
		{"av1", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, canDirectPlay(tc.codec), "codec %q", tc.codec)
	}
}
