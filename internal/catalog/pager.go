// SPDX-License-Identifier: MIT

package catalog

// Predicate decides whether an item survives post-fetch filtering. Filters
// run client-side because some server-side exclusion operators are known to
// silently misbehave.
type Predicate[T any] func(T) bool

// PageState accumulates successive pages of a result set for one list view.
// Items are keyed by identity and kept in first-seen order; no identity ever
// appears twice. A PageState is owned by a single view and must only be
// mutated by that view's fetch path.
type PageState[T any] struct {
	items   []T
	seen    map[string]struct{}
	keyOf   func(T) string
	filters []Predicate[T]

	page     int
	pageSize int
	hasMore  bool
	inFlight bool
}

// NewPageState creates an empty aggregation keyed by keyOf. The optional
// filters are applied to every page after deduplication.
func NewPageState[T any](pageSize int, keyOf func(T) string, filters ...Predicate[T]) *PageState[T] {
	if pageSize <= 0 {
		pageSize = 40
	}
	return &PageState[T]{
		seen:     make(map[string]struct{}),
		keyOf:    keyOf,
		filters:  filters,
		page:     1,
		pageSize: pageSize,
		hasMore:  true,
	}
}

// AppendPage merges newItems into the accumulated set. Items whose key is
// already present are dropped; existing items are never reordered or
// replaced. The has-more flag is recomputed from the raw (pre-dedup,
// pre-filter) page length: a short page means the upstream ran out.
func (p *PageState[T]) AppendPage(newItems []T) {
	for _, item := range newItems {
		key := p.keyOf(item)
		if _, dup := p.seen[key]; dup {
			continue
		}
		if !p.accept(item) {
			// Filtered items still claim their identity so a later page
			// cannot reintroduce them.
			p.seen[key] = struct{}{}
			continue
		}
		p.seen[key] = struct{}{}
		p.items = append(p.items, item)
	}
	// Heuristic: an exact-multiple result set costs one extra empty fetch.
	p.hasMore = len(newItems) >= p.pageSize
	p.page++
}

// ReplacePage discards the accumulated set and starts over with newItems.
func (p *PageState[T]) ReplacePage(newItems []T) {
	p.items = nil
	p.seen = make(map[string]struct{})
	p.page = 1
	p.hasMore = true
	p.AppendPage(newItems)
}

func (p *PageState[T]) accept(item T) bool {
	for _, keep := range p.filters {
		if !keep(item) {
			return false
		}
	}
	return true
}

// Items returns the merged, deduplicated, filtered set in first-seen order.
// The returned slice is shared; callers must not mutate it.
func (p *PageState[T]) Items() []T { return p.items }

// Len returns the number of accumulated items.
func (p *PageState[T]) Len() int { return len(p.items) }

// Page returns the next page number to request (1-based).
func (p *PageState[T]) Page() int { return p.page }

// HasMore reports whether another page is worth requesting.
func (p *PageState[T]) HasMore() bool { return p.hasMore }

// InFlight reports whether a fetch for this state is outstanding.
func (p *PageState[T]) InFlight() bool { return p.inFlight }

// SetInFlight marks the start or end of a fetch for this state.
func (p *PageState[T]) SetInFlight(v bool) { p.inFlight = v }
