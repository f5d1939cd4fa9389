// SPDX-License-Identifier: MIT

package catalog

import "strings"

// ExcludeSceneTags builds a predicate that drops scenes carrying any of the
// named tags, case-insensitively. This re-establishes exclusions the upstream
// query layer mishandles for certain operators.
func ExcludeSceneTags(names ...string) Predicate[Scene] {
	set := lowerSet(names)
	return func(s Scene) bool {
		for _, tag := range s.Tags {
			if _, bad := set[strings.ToLower(tag.Name)]; bad {
				return false
			}
		}
		return true
	}
}

// ExcludeMarkerTags builds the equivalent predicate for markers, matching the
// primary tag and the owning scene's tags.
func ExcludeMarkerTags(names ...string) Predicate[Marker] {
	set := lowerSet(names)
	return func(m Marker) bool {
		if _, bad := set[strings.ToLower(m.PrimaryTag.Name)]; bad {
			return false
		}
		for _, tag := range m.Scene.Tags {
			if _, bad := set[strings.ToLower(tag.Name)]; bad {
				return false
			}
		}
		return true
	}
}

func lowerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}
