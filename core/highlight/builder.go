// ABOUTME: Highlight span builder wrapping extracted fragments in marker nodes
// ABOUTME: Reinserts the wrapped fragment where it was extracted and normalizes the result

package highlight

import (
	"highlights-app-api/core/content"
	"highlights-app-api/core/errors"
)

// Wrap tags every non-blank text run of the fragment with m.
// Runs already inside a marker take over the new identity, so the most recent
// highlight owns any overlapping text.
func Wrap(t *content.Tree, frag *Fragment, m content.Marker) error {
	if err := validateMarker(m); err != nil {
		return err
	}
	for i, id := range frag.Nodes {
		switch t.Kind(id) {
		case content.KindText:
			if isBlank(t.Text(id)) {
				continue
			}
			mk := t.NewMarker(m)
			if err := t.AppendChild(mk, id); err != nil {
				return err
			}
			frag.Nodes[i] = mk
		case content.KindMarker:
			if err := t.SetMarker(id, m); err != nil {
				return err
			}
		case content.KindElement:
			if err := wrapDescendants(t, id, m); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateMarker(m content.Marker) error {
	if m.HighlightID == "" {
		return &errors.ValidationError{Field: "id", Message: "highlight id is required"}
	}
	if !m.Color.Valid() {
		return &errors.ValidationError{Field: "color", Message: "unsupported color " + string(m.Color)}
	}
	return nil
}

func wrapDescendants(t *content.Tree, root content.NodeID, m content.Marker) error {
	var texts, markers []content.NodeID
	t.Walk(root, func(id content.NodeID) bool {
		switch t.Kind(id) {
		case content.KindMarker:
			markers = append(markers, id)
		case content.KindText:
			if t.Kind(t.Parent(id)) != content.KindMarker && !isBlank(t.Text(id)) {
				texts = append(texts, id)
			}
		}
		return true
	})
	for _, id := range markers {
		if err := t.SetMarker(id, m); err != nil {
			return err
		}
	}
	for _, id := range texts {
		parent := t.Parent(id)
		mk := t.NewMarker(m)
		if err := t.InsertBefore(parent, mk, id); err != nil {
			return err
		}
		if err := t.Detach(id); err != nil {
			return err
		}
		if err := t.AppendChild(mk, id); err != nil {
			return err
		}
	}
	return nil
}

// Insert puts the fragment back where it was extracted and joins the
// elements that extraction had to split
func Insert(t *content.Tree, frag *Fragment) error {
	if !t.Valid(frag.Parent) || (frag.Before != 0 && t.Parent(frag.Before) != frag.Parent) {
		return &errors.AnchorStaleError{Reason: "insertion point no longer exists"}
	}
	for _, id := range frag.Nodes {
		if err := t.InsertBefore(frag.Parent, id, frag.Before); err != nil {
			return stale(err)
		}
	}
	for i := len(frag.splits) - 1; i >= 0; i-- {
		if err := join(t, frag.splits[i]); err != nil {
			return stale(err)
		}
	}
	return nil
}

// join merges the right half of a split back into the left one when both are
// still adjacent and carry the same annotation
func join(t *content.Tree, s split) error {
	if !t.Valid(s.left) || !t.Valid(s.right) || t.NextSibling(s.left) != s.right {
		return nil
	}
	if t.Kind(s.left) == content.KindMarker {
		lm, _ := t.Marker(s.left)
		rm, _ := t.Marker(s.right)
		if lm != rm {
			return nil
		}
	}
	for c := t.FirstChild(s.right); c != 0; c = t.FirstChild(s.right) {
		if err := t.Detach(c); err != nil {
			return err
		}
		if err := t.AppendChild(s.left, c); err != nil {
			return err
		}
	}
	if err := t.Remove(s.right); err != nil {
		return err
	}
	t.CoalesceText(s.left)
	return nil
}

// Apply highlights the anchored selection with m: extract, wrap, insert and
// normalize. On error t may be partially modified; callers run Apply on a clone.
func Apply(t *content.Tree, anchor *Anchor, m content.Marker) error {
	if err := validateMarker(m); err != nil {
		return err
	}
	frag, err := Extract(t, anchor)
	if err != nil {
		return err
	}
	if err := Wrap(t, frag, m); err != nil {
		return err
	}
	if err := Insert(t, frag); err != nil {
		return err
	}
	Normalize(t, m.HighlightID)
	return nil
}
