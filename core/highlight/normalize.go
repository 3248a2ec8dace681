// ABOUTME: Fragment normalizer merging physically adjacent markers of one highlight
// ABOUTME: Keeps the tree free of same-id sibling fragments after every mutation

package highlight

import "highlights-app-api/core/content"

// Normalize merges every marker of id into its preceding sibling when that
// sibling is a marker of the same id. The list is walked backward once so
// chains of three or more fragments collapse into one.
func Normalize(t *content.Tree, id string) {
	markers := t.Markers(id)
	for i := len(markers) - 1; i > 0; i-- {
		prev, cur := markers[i-1], markers[i]
		if t.NextSibling(prev) != cur {
			continue
		}
		for c := t.FirstChild(cur); c != 0; c = t.FirstChild(cur) {
			_ = t.Detach(c)
			_ = t.AppendChild(prev, c)
		}
		_ = t.Remove(cur)
		t.CoalesceText(prev)
	}
}

// NormalizeAll heals the whole tree: markers holding no text are unwrapped and
// adjacent fragments of every highlight are merged
func NormalizeAll(t *content.Tree) {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range t.AllMarkers() {
		if t.TextContent(m) == "" {
			parent := t.Parent(m)
			_ = t.Unwrap(m)
			t.CoalesceText(parent)
			continue
		}
		mk, _ := t.Marker(m)
		if !seen[mk.HighlightID] {
			seen[mk.HighlightID] = true
			ids = append(ids, mk.HighlightID)
		}
	}
	for _, id := range ids {
		Normalize(t, id)
	}
}
