// SPDX-License-Identifier: MIT

package catalog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func scenes(ids ...string) []Scene {
	out := make([]Scene, 0, len(ids))
	for _, id := range ids {
		out = append(out, Scene{ID: id, Title: "scene " + id})
	}
	return out
}

func ids(items []Scene) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, s.ID)
	}
	return out
}

func TestAppendPageDedup(t *testing.T) {
	p := NewPageState(2, Scene.Key)

	p.AppendPage(scenes("1", "2"))
	p.AppendPage(scenes("2", "3"))

	if diff := cmp.Diff([]string{"1", "2", "3"}, ids(p.Items())); diff != "" {
		t.Errorf("merged ids mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendPageFirstSeenOrder(t *testing.T) {
	p := NewPageState(4, Scene.Key)

	p.AppendPage(scenes("3", "1", "4", "1"))
	p.AppendPage(scenes("5", "3", "2", "4"))

	assert.Equal(t, []string{"3", "1", "4", "5", "2"}, ids(p.Items()))
}

func TestAppendPageEveryIdentityOnce(t *testing.T) {
	// Overlapping pages in every combination: each identity appears once.
	p := NewPageState(3, Scene.Key)
	pages := [][]Scene{
		scenes("a", "b", "c"),
		scenes("b", "c", "d"),
		scenes("d", "a", "e"),
		scenes("e", "e", "e"),
	}
	for _, page := range pages {
		p.AppendPage(page)
	}

	seen := map[string]int{}
	for _, s := range p.Items() {
		seen[s.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "identity %s", id)
	}
	assert.Len(t, seen, 5)
}

func TestHasMoreHeuristic(t *testing.T) {
	p := NewPageState(2, Scene.Key)
	assert.True(t, p.HasMore(), "optimistic before the first page")

	p.AppendPage(scenes("1", "2")) // full page
	assert.True(t, p.HasMore())
	assert.Equal(t, 2, p.Page())

	p.AppendPage(scenes("3")) // short page
	assert.False(t, p.HasMore())

	// Known inefficiency: an exact multiple of the page size reports more
	// pages and costs one empty fetch.
	q := NewPageState(2, Scene.Key)
	q.AppendPage(scenes("1", "2"))
	assert.True(t, q.HasMore())
	q.AppendPage(nil)
	assert.False(t, q.HasMore())
}

func TestReplacePage(t *testing.T) {
	p := NewPageState(2, Scene.Key)
	p.AppendPage(scenes("1", "2"))
	p.AppendPage(scenes("3", "4"))

	p.ReplacePage(scenes("7", "8"))
	assert.Equal(t, []string{"7", "8"}, ids(p.Items()))
	assert.Equal(t, 2, p.Page())
	assert.True(t, p.HasMore())

	// Identities from before the replace are accepted again.
	p.AppendPage(scenes("1"))
	assert.Equal(t, []string{"7", "8", "1"}, ids(p.Items()))
}

func TestPostFilterApplied(t *testing.T) {
	vr := Scene{ID: "v", Tags: []Tag{{ID: "t", Name: "VR"}}}
	flat := Scene{ID: "f", Tags: []Tag{{ID: "u", Name: "2D"}}}

	p := NewPageState(10, Scene.Key, ExcludeSceneTags("vr"))
	p.AppendPage([]Scene{vr, flat})

	assert.Equal(t, []string{"f"}, ids(p.Items()))

	// A filtered identity cannot sneak back in via a later page.
	p.AppendPage([]Scene{vr})
	assert.Equal(t, []string{"f"}, ids(p.Items()))
}

func TestHasMoreCountsRawPageLength(t *testing.T) {
	// Filters drop items but must not make the aggregator think the
	// upstream ran out.
	filtered := func(s Scene) bool { return false }
	p := NewPageState(2, Scene.Key, filtered)

	p.AppendPage(scenes("1", "2"))
	assert.Zero(t, p.Len())
	assert.True(t, p.HasMore(), "raw page was full")
}

func TestManyPagesStressDedup(t *testing.T) {
	p := NewPageState(10, Scene.Key)
	for page := 0; page < 50; page++ {
		var batch []Scene
		for i := 0; i < 10; i++ {
			// Heavy overlap between consecutive pages.
			batch = append(batch, Scene{ID: fmt.Sprintf("s%d", page*5+i)})
		}
		p.AppendPage(batch)
	}
	assert.Equal(t, 5*49+10, p.Len())
}
