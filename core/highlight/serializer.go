// ABOUTME: Persistence serializer converting trees to stored content and back
// ABOUTME: Content and highlight records are always produced from one snapshot

package highlight

import (
	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
)

// Serialize renders t and derives its highlight records
func Serialize(t *content.Tree) (string, []domain.HighlightRecord, error) {
	html, err := content.Render(t)
	if err != nil {
		return "", nil, err
	}
	return html, Records(t), nil
}

// Deserialize parses stored content. Unparseable content yields a ContentCorruptError.
func Deserialize(stored string) (*content.Tree, error) {
	t, err := content.Parse(stored)
	if err != nil {
		return nil, &errors.ContentCorruptError{Reason: "stored content cannot be parsed", Err: err}
	}
	return t, nil
}
