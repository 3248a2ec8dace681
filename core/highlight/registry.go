// ABOUTME: Highlight registry deriving flat highlight records from content
// ABOUTME: Groups marker fragments by identity in document order

package highlight

import (
	"strings"

	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
)

// Records derives one record per highlight id present in t, ordered by the
// first appearance of each id. Text is the concatenation of the id's fragments
// in document order; color and note come from its first fragment.
func Records(t *content.Tree) []domain.HighlightRecord {
	records := []domain.HighlightRecord{}
	index := make(map[string]int)
	var texts []*strings.Builder

	for _, id := range t.AllMarkers() {
		m, _ := t.Marker(id)
		i, ok := index[m.HighlightID]
		if !ok {
			i = len(records)
			index[m.HighlightID] = i
			records = append(records, domain.HighlightRecord{ID: m.HighlightID, Color: m.Color, Note: m.Note})
			texts = append(texts, &strings.Builder{})
		}
		texts[i].WriteString(t.TextContent(id))
	}
	for i := range records {
		records[i].Text = texts[i].String()
	}
	return records
}

// Find returns the record of id, if t holds any fragment of it
func Find(t *content.Tree, id string) (domain.HighlightRecord, bool) {
	for _, r := range Records(t) {
		if r.ID == id {
			return r, true
		}
	}
	return domain.HighlightRecord{}, false
}
