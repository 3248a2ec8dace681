// ABOUTME: Deletion and attribute updates applied to every fragment of a highlight
// ABOUTME: Each operation fails with NotFoundError when the id has no markers

package highlight

import (
	"strings"

	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
)

// Delete unwraps every marker of id, leaving the surrounding text as it was
func Delete(t *content.Tree, id string) error {
	markers := t.Markers(id)
	if len(markers) == 0 {
		return &errors.NotFoundError{Resource: "highlight", ID: id}
	}
	for _, m := range markers {
		parent := t.Parent(m)
		if err := t.Unwrap(m); err != nil {
			return err
		}
		t.CoalesceText(parent)
	}
	return nil
}

// SetNote sets the note on every fragment of id. A blank note removes it.
func SetNote(t *content.Tree, id, note string) error {
	note = strings.TrimSpace(note)
	return update(t, id, func(m *content.Marker) { m.Note = note })
}

// SetColor sets the color on every fragment of id
func SetColor(t *content.Tree, id string, color domain.Color) error {
	if !color.Valid() {
		return &errors.ValidationError{Field: "color", Message: "unsupported color " + string(color)}
	}
	return update(t, id, func(m *content.Marker) { m.Color = color })
}

func update(t *content.Tree, id string, fn func(*content.Marker)) error {
	markers := t.Markers(id)
	if len(markers) == 0 {
		return &errors.NotFoundError{Resource: "highlight", ID: id}
	}
	for _, n := range markers {
		m, _ := t.Marker(n)
		fn(&m)
		if err := t.SetMarker(n, m); err != nil {
			return err
		}
	}
	return nil
}
