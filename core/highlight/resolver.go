// ABOUTME: Selection anchor resolver turning raw text ranges into addressable run fragments
// ABOUTME: Resolution is pure; extraction splits partially selected ancestors and detaches the range

package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"highlights-app-api/core/content"
	"highlights-app-api/core/errors"
)

// Point is a position inside a text run, as a rune offset
type Point struct {
	Node   content.NodeID `json:"node"`
	Offset int            `json:"offset"`
}

// Range is a user selection between two points
type Range struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Run is one selected slice of a text node
type Run struct {
	Node  content.NodeID
	Start int // rune offset, inclusive
	End   int // rune offset, exclusive
	Text  string
}

// Anchor is a resolved selection. It is bound to the tree version it was resolved against.
type Anchor struct {
	Range   Range
	Runs    []Run
	Version uint64
}

// Text returns the selected text of every run, concatenated
func (a *Anchor) Text() string {
	var b strings.Builder
	for _, r := range a.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Fragment is a detached slice of the tree produced by Extract
type Fragment struct {
	Nodes  []content.NodeID
	Parent content.NodeID
	Before content.NodeID

	splits []split
}

// split records an element cut in two while extracting, so it can be joined again
type split struct {
	left, right content.NodeID
}

// RangeFromTextOffsets maps rune offsets into the document's text content to a Range.
// Offsets out of order are swapped.
func RangeFromTextOffsets(t *content.Tree, start, end int) (Range, error) {
	if start > end {
		start, end = end, start
	}
	if start < 0 {
		return Range{}, &errors.ValidationError{Field: "start", Message: "must not be negative"}
	}
	if start == end {
		return Range{}, &errors.EmptySelectionError{Reason: "collapsed range"}
	}

	var rng Range
	var foundStart, foundEnd bool
	pos := 0
	t.Walk(t.Root(), func(id content.NodeID) bool {
		if t.Kind(id) != content.KindText {
			return true
		}
		n := utf8.RuneCountInString(t.Text(id))
		if !foundStart && start < pos+n {
			rng.Start = Point{Node: id, Offset: start - pos}
			foundStart = true
		}
		if foundStart && end <= pos+n {
			rng.End = Point{Node: id, Offset: end - pos}
			foundEnd = true
			return false
		}
		pos += n
		return true
	})
	if !foundStart {
		return Range{}, &errors.ValidationError{Field: "start", Message: "beyond end of content"}
	}
	if !foundEnd {
		return Range{}, &errors.ValidationError{Field: "end", Message: "beyond end of content"}
	}
	return rng, nil
}

// Resolve validates rng against t and returns the non-whitespace runs it covers,
// in document order. It does not mutate t, so resolving an unchanged selection
// twice yields the same anchor.
func Resolve(t *content.Tree, rng Range) (*Anchor, error) {
	for _, p := range []Point{rng.Start, rng.End} {
		if t.Kind(p.Node) != content.KindText || !t.Attached(p.Node) {
			return nil, &errors.AnchorStaleError{Reason: "selection point is not an attached text run"}
		}
		if p.Offset < 0 || p.Offset > utf8.RuneCountInString(t.Text(p.Node)) {
			return nil, &errors.ValidationError{Field: "offset", Message: "outside of text run"}
		}
	}

	var texts []content.NodeID
	startIdx, endIdx := -1, -1
	t.Walk(t.Root(), func(id content.NodeID) bool {
		if t.Kind(id) != content.KindText {
			return true
		}
		if id == rng.Start.Node {
			startIdx = len(texts)
		}
		if id == rng.End.Node {
			endIdx = len(texts)
		}
		texts = append(texts, id)
		return true
	})

	if startIdx > endIdx || (startIdx == endIdx && rng.Start.Offset > rng.End.Offset) {
		rng.Start, rng.End = rng.End, rng.Start
		startIdx, endIdx = endIdx, startIdx
	}
	if startIdx == endIdx && rng.Start.Offset == rng.End.Offset {
		return nil, &errors.EmptySelectionError{Reason: "collapsed range"}
	}

	anchor := &Anchor{Range: rng, Version: t.Version()}
	for i := startIdx; i <= endIdx; i++ {
		id := texts[i]
		text := t.Text(id)
		from, to := 0, utf8.RuneCountInString(text)
		if i == startIdx {
			from = rng.Start.Offset
		}
		if i == endIdx {
			to = rng.End.Offset
		}
		if from >= to {
			continue
		}
		slice := text[byteOffset(text, from):byteOffset(text, to)]
		if isBlank(slice) {
			continue
		}
		anchor.Runs = append(anchor.Runs, Run{Node: id, Start: from, End: to, Text: slice})
	}
	if len(anchor.Runs) == 0 {
		return nil, &errors.EmptySelectionError{Reason: "selection holds only whitespace"}
	}
	return anchor, nil
}

// checkAnchor reports whether anchor still describes t
func checkAnchor(t *content.Tree, anchor *Anchor) error {
	if anchor == nil {
		return &errors.EmptySelectionError{Reason: "no anchor"}
	}
	if anchor.Version != t.Version() {
		return &errors.AnchorStaleError{Reason: "content changed since the selection was resolved"}
	}
	for _, p := range []Point{anchor.Range.Start, anchor.Range.End} {
		if t.Kind(p.Node) != content.KindText || !t.Attached(p.Node) {
			return &errors.AnchorStaleError{Reason: "selected text run no longer exists"}
		}
	}
	return nil
}

type boundary struct {
	parent, before content.NodeID
}

// Extract detaches the anchored range from t. Ancestors that are only partly
// selected are split so the fragment keeps its element structure.
func Extract(t *content.Tree, anchor *Anchor) (*Fragment, error) {
	if err := checkAnchor(t, anchor); err != nil {
		return nil, err
	}
	rng := anchor.Range

	// the end is split first so the start node id keeps addressing the left part
	end, err := splitPoint(t, rng.End)
	if err != nil {
		return nil, stale(err)
	}
	start, err := splitPoint(t, rng.Start)
	if err != nil {
		return nil, stale(err)
	}

	common := commonAncestor(t, start.parent, end.parent)
	for t.Kind(common) == content.KindMarker {
		common = t.Parent(common)
	}

	frag := &Fragment{Parent: common}
	if end, err = frag.lift(t, end, common); err != nil {
		return nil, stale(err)
	}
	if start, err = frag.lift(t, start, common); err != nil {
		return nil, stale(err)
	}
	frag.Before = end.before

	for c := start.before; c != 0 && c != end.before; {
		next := t.NextSibling(c)
		if err := t.Detach(c); err != nil {
			return nil, stale(err)
		}
		frag.Nodes = append(frag.Nodes, c)
		c = next
	}
	if len(frag.Nodes) == 0 {
		return nil, &errors.EmptySelectionError{Reason: "nothing to extract"}
	}
	return frag, nil
}

// splitPoint turns a text position into a boundary between children
func splitPoint(t *content.Tree, p Point) (boundary, error) {
	text := t.Text(p.Node)
	parent := t.Parent(p.Node)
	off := byteOffset(text, p.Offset)
	switch {
	case off == 0:
		return boundary{parent: parent, before: p.Node}, nil
	case off >= len(text):
		return boundary{parent: parent, before: t.NextSibling(p.Node)}, nil
	}
	right, err := t.SplitText(p.Node, off)
	if err != nil {
		return boundary{}, err
	}
	return boundary{parent: parent, before: right}, nil
}

// lift moves b up until its parent is top, splitting ancestors it cuts through
func (f *Fragment) lift(t *content.Tree, b boundary, top content.NodeID) (boundary, error) {
	for b.parent != top {
		p := b.parent
		gp := t.Parent(p)
		if gp == 0 {
			return boundary{}, content.ErrInvalidNode
		}
		switch b.before {
		case t.FirstChild(p):
			b = boundary{parent: gp, before: p}
		case 0:
			b = boundary{parent: gp, before: t.NextSibling(p)}
		default:
			clone, err := t.SplitElement(p, b.before)
			if err != nil {
				return boundary{}, err
			}
			f.splits = append(f.splits, split{left: p, right: clone})
			b = boundary{parent: gp, before: clone}
		}
	}
	return b, nil
}

func commonAncestor(t *content.Tree, a, b content.NodeID) content.NodeID {
	seen := map[content.NodeID]bool{a: true}
	for _, id := range t.Ancestors(a) {
		seen[id] = true
	}
	if seen[b] {
		return b
	}
	for _, id := range t.Ancestors(b) {
		if seen[id] {
			return id
		}
	}
	return t.Root()
}

func stale(err error) error {
	return &errors.AnchorStaleError{Reason: err.Error()}
}

// byteOffset converts a rune offset into a byte offset within s
func byteOffset(s string, runes int) int {
	if runes <= 0 {
		return 0
	}
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
