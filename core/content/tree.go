// ABOUTME: Content model for article bodies as an arena of text runs, elements and highlight markers
// ABOUTME: Nodes are addressed by NodeID instead of pointers so trees can be cloned and swapped cheaply

package content

import (
	"errors"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"highlights-app-api/core/domain"
	"golang.org/x/net/html"
)

// NodeID addresses a node inside a Tree. The zero value means "no node".
type NodeID int32

// Kind is the type of a content node
type Kind uint8

// Node kinds
const (
	KindRoot Kind = iota + 1
	KindText
	KindElement
	KindComment
	KindMarker
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindText:
		return "text"
	case KindElement:
		return "element"
	case KindComment:
		return "comment"
	case KindMarker:
		return "marker"
	}
	return "unknown"
}

// Marker is the typed annotation carried by a marker node
type Marker struct {
	HighlightID string
	Color       domain.Color
	Note        string
}

// Errors returned by tree mutations
var (
	ErrInvalidNode  = errors.New("content: invalid node")
	ErrMarkerChild  = errors.New("content: markers may only contain text runs")
	ErrLeafChild    = errors.New("content: text and comment nodes cannot have children")
	ErrCycle        = errors.New("content: node cannot be inserted into its own subtree")
	ErrNotChild     = errors.New("content: reference node is not a child of parent")
	ErrAttached     = errors.New("content: node is already attached")
	ErrSplitOffset  = errors.New("content: split offset out of range")
	ErrNotSplitable = errors.New("content: node cannot be split")
)

type node struct {
	kind      Kind
	data      string // text, comment data or element tag
	namespace string
	attrs     []html.Attribute
	marker    Marker

	parent, firstChild, lastChild, prev, next NodeID
	live                                      bool
}

// Tree is an article body. A Tree is not safe for concurrent mutation.
type Tree struct {
	nodes   []node
	root    NodeID
	version uint64
}

// New creates an empty tree holding only a root node
func New() *Tree {
	t := &Tree{nodes: make([]node, 1, 64)}
	t.root = t.alloc(node{kind: KindRoot})
	t.touch()
	return t
}

// Root returns the root node
func (t *Tree) Root() NodeID { return t.root }

// clock hands out versions shared by every tree, so two trees only report the
// same version when one is an unmodified clone of the other
var clock atomic.Uint64

// Version changes on every mutation
func (t *Tree) Version() uint64 { return t.version }

func (t *Tree) touch() { t.version = clock.Add(1) }

func (t *Tree) alloc(n node) NodeID {
	n.live = true
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Valid reports whether id addresses a live node
func (t *Tree) Valid(id NodeID) bool {
	return id > 0 && int(id) < len(t.nodes) && t.nodes[id].live
}

func (t *Tree) get(id NodeID) *node {
	if !t.Valid(id) {
		return nil
	}
	return &t.nodes[id]
}

// Kind returns the kind of id, or 0 for an invalid node
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.get(id); n != nil {
		return n.kind
	}
	return 0
}

// Text returns the payload of a text node
func (t *Tree) Text(id NodeID) string {
	if n := t.get(id); n != nil && n.kind == KindText {
		return n.data
	}
	return ""
}

// Tag returns the tag name of an element node
func (t *Tree) Tag(id NodeID) string {
	if n := t.get(id); n != nil && n.kind == KindElement {
		return n.data
	}
	return ""
}

// Marker returns the annotation of a marker node
func (t *Tree) Marker(id NodeID) (Marker, bool) {
	if n := t.get(id); n != nil && n.kind == KindMarker {
		return n.marker, true
	}
	return Marker{}, false
}

// Parent returns the parent of id
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.parent
	}
	return 0
}

// FirstChild returns the first child of id
func (t *Tree) FirstChild(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.firstChild
	}
	return 0
}

// LastChild returns the last child of id
func (t *Tree) LastChild(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.lastChild
	}
	return 0
}

// NextSibling returns the sibling after id
func (t *Tree) NextSibling(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.next
	}
	return 0
}

// PrevSibling returns the sibling before id
func (t *Tree) PrevSibling(id NodeID) NodeID {
	if n := t.get(id); n != nil {
		return n.prev
	}
	return 0
}

// Children returns the children of id in order
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.FirstChild(id); c != 0; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// Ancestors returns the ancestors of id from its parent up to the top of its subtree
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := t.Parent(id); p != 0; p = t.nodes[p].parent {
		out = append(out, p)
	}
	return out
}

// Attached reports whether id is reachable from the root
func (t *Tree) Attached(id NodeID) bool {
	if !t.Valid(id) {
		return false
	}
	if id == t.root {
		return true
	}
	anc := t.Ancestors(id)
	return len(anc) > 0 && anc[len(anc)-1] == t.root
}

// NewText allocates a detached text node
func (t *Tree) NewText(s string) NodeID {
	t.touch()
	return t.alloc(node{kind: KindText, data: s})
}

// NewComment allocates a detached comment node
func (t *Tree) NewComment(s string) NodeID {
	t.touch()
	return t.alloc(node{kind: KindComment, data: s})
}

// NewElement allocates a detached opaque element
func (t *Tree) NewElement(tag, namespace string, attrs []html.Attribute) NodeID {
	t.touch()
	return t.alloc(node{kind: KindElement, data: tag, namespace: namespace, attrs: cloneAttrs(attrs)})
}

// NewMarker allocates a detached marker node
func (t *Tree) NewMarker(m Marker) NodeID {
	t.touch()
	return t.alloc(node{kind: KindMarker, marker: m})
}

// SetText replaces the payload of a text node
func (t *Tree) SetText(id NodeID, s string) error {
	n := t.get(id)
	if n == nil || n.kind != KindText {
		return ErrInvalidNode
	}
	n.data = s
	t.touch()
	return nil
}

// SetMarker replaces the annotation of a marker node
func (t *Tree) SetMarker(id NodeID, m Marker) error {
	n := t.get(id)
	if n == nil || n.kind != KindMarker {
		return ErrInvalidNode
	}
	n.marker = m
	t.touch()
	return nil
}

// AppendChild attaches a detached child as the last child of parent
func (t *Tree) AppendChild(parent, child NodeID) error {
	return t.InsertBefore(parent, child, 0)
}

// InsertBefore attaches a detached child under parent before ref.
// A zero ref appends.
func (t *Tree) InsertBefore(parent, child, ref NodeID) error {
	p, c := t.get(parent), t.get(child)
	if p == nil || c == nil || child == t.root {
		return ErrInvalidNode
	}
	if c.parent != 0 {
		return ErrAttached
	}
	switch p.kind {
	case KindText, KindComment:
		return ErrLeafChild
	case KindMarker:
		if c.kind != KindText {
			return ErrMarkerChild
		}
	}
	if parent == child {
		return ErrCycle
	}
	for _, a := range t.Ancestors(parent) {
		if a == child {
			return ErrCycle
		}
	}
	if ref != 0 && t.Parent(ref) != parent {
		return ErrNotChild
	}

	c.parent = parent
	if ref == 0 {
		c.prev = p.lastChild
		c.next = 0
		if p.lastChild != 0 {
			t.nodes[p.lastChild].next = child
		} else {
			p.firstChild = child
		}
		p.lastChild = child
	} else {
		r := &t.nodes[ref]
		c.prev = r.prev
		c.next = ref
		if r.prev != 0 {
			t.nodes[r.prev].next = child
		} else {
			p.firstChild = child
		}
		r.prev = child
	}
	t.touch()
	return nil
}

// Detach unlinks id from its parent. The subtree stays allocated and can be re-inserted.
func (t *Tree) Detach(id NodeID) error {
	n := t.get(id)
	if n == nil || id == t.root {
		return ErrInvalidNode
	}
	if n.parent == 0 {
		return nil
	}
	p := &t.nodes[n.parent]
	if n.prev != 0 {
		t.nodes[n.prev].next = n.next
	} else {
		p.firstChild = n.next
	}
	if n.next != 0 {
		t.nodes[n.next].prev = n.prev
	} else {
		p.lastChild = n.prev
	}
	n.parent, n.prev, n.next = 0, 0, 0
	t.touch()
	return nil
}

// Remove detaches id and frees its whole subtree
func (t *Tree) Remove(id NodeID) error {
	if err := t.Detach(id); err != nil {
		return err
	}
	t.free(id)
	return nil
}

func (t *Tree) free(id NodeID) {
	for c := t.nodes[id].firstChild; c != 0; {
		next := t.nodes[c].next
		t.free(c)
		c = next
	}
	t.nodes[id] = node{}
}

// Unwrap replaces id with its children, in place
func (t *Tree) Unwrap(id NodeID) error {
	n := t.get(id)
	if n == nil || n.parent == 0 {
		return ErrInvalidNode
	}
	parent := n.parent
	for c := n.firstChild; c != 0; c = n.firstChild {
		if err := t.Detach(c); err != nil {
			return err
		}
		if err := t.InsertBefore(parent, c, id); err != nil {
			return err
		}
	}
	return t.Remove(id)
}

// SplitText cuts a text node at byte offset. The left part keeps id, the right
// part is inserted as the next sibling and returned.
func (t *Tree) SplitText(id NodeID, offset int) (NodeID, error) {
	n := t.get(id)
	if n == nil || n.kind != KindText {
		return 0, ErrNotSplitable
	}
	if offset <= 0 || offset >= len(n.data) || !utf8.RuneStart(n.data[offset]) {
		return 0, ErrSplitOffset
	}
	left, right := n.data[:offset], n.data[offset:]
	n.data = left
	parent, next := n.parent, n.next
	rid := t.NewText(right)
	if parent != 0 {
		if err := t.InsertBefore(parent, rid, next); err != nil {
			return 0, err
		}
	}
	return rid, nil
}

// SplitElement moves at and every later sibling into a shallow copy of id,
// which is inserted right after id and returned. Works for elements and markers.
func (t *Tree) SplitElement(id, at NodeID) (NodeID, error) {
	n := t.get(id)
	if n == nil || (n.kind != KindElement && n.kind != KindMarker) || n.parent == 0 {
		return 0, ErrNotSplitable
	}
	if t.Parent(at) != id {
		return 0, ErrNotChild
	}
	clone := t.alloc(node{
		kind:      n.kind,
		data:      n.data,
		namespace: n.namespace,
		attrs:     cloneAttrs(n.attrs),
		marker:    n.marker,
	})
	// n may have moved after alloc grew the slice
	if err := t.InsertBefore(t.nodes[id].parent, clone, t.nodes[id].next); err != nil {
		return 0, err
	}
	for c := at; c != 0; {
		next := t.nodes[c].next
		if err := t.Detach(c); err != nil {
			return 0, err
		}
		if err := t.AppendChild(clone, c); err != nil {
			return 0, err
		}
		c = next
	}
	return clone, nil
}

// CoalesceText merges adjacent text children of id and drops empty ones
func (t *Tree) CoalesceText(id NodeID) {
	for c := t.FirstChild(id); c != 0; {
		next := t.nodes[c].next
		if t.nodes[c].kind != KindText {
			c = next
			continue
		}
		if t.nodes[c].data == "" {
			_ = t.Remove(c)
			c = next
			continue
		}
		for next != 0 && t.nodes[next].kind == KindText {
			t.nodes[c].data += t.nodes[next].data
			after := t.nodes[next].next
			_ = t.Remove(next)
			next = after
		}
		c = next
	}
	t.touch()
}

// Walk visits id and its descendants in document order until fn returns false
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) bool {
	if !t.Valid(id) {
		return true
	}
	if !fn(id) {
		return false
	}
	for c := t.nodes[id].firstChild; c != 0; c = t.nodes[c].next {
		if !t.Walk(c, fn) {
			return false
		}
	}
	return true
}

// TextContent concatenates every text run under id
func (t *Tree) TextContent(id NodeID) string {
	var b strings.Builder
	t.Walk(id, func(n NodeID) bool {
		if t.nodes[n].kind == KindText {
			b.WriteString(t.nodes[n].data)
		}
		return true
	})
	return b.String()
}

// Markers returns every attached marker carrying highlightID, in document order
func (t *Tree) Markers(highlightID string) []NodeID {
	var out []NodeID
	t.Walk(t.root, func(n NodeID) bool {
		if t.nodes[n].kind == KindMarker && t.nodes[n].marker.HighlightID == highlightID {
			out = append(out, n)
		}
		return true
	})
	return out
}

// AllMarkers returns every attached marker in document order
func (t *Tree) AllMarkers() []NodeID {
	var out []NodeID
	t.Walk(t.root, func(n NodeID) bool {
		if t.nodes[n].kind == KindMarker {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Clone returns an independent copy. NodeIDs stay valid across the copy.
func (t *Tree) Clone() *Tree {
	nodes := make([]node, len(t.nodes), cap(t.nodes))
	copy(nodes, t.nodes)
	for i := range nodes {
		nodes[i].attrs = cloneAttrs(nodes[i].attrs)
	}
	return &Tree{nodes: nodes, root: t.root, version: t.version}
}

func cloneAttrs(attrs []html.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]html.Attribute, len(attrs))
	copy(out, attrs)
	return out
}
