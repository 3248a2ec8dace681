// ABOUTME: HTML codec for the content model using golang.org/x/net/html
// ABOUTME: Recognizes highlight markers and passes every other node through untouched

package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"highlights-app-api/core/domain"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker element wire format
const (
	MarkerTag       = "mark"
	AttrHighlightID = "data-highlight-id"
	AttrColor       = "data-color"
	AttrNote        = "data-note"
	MarkerClass     = "highlight"
)

// MaxContentSize bounds the size of content accepted by Parse
const MaxContentSize = 10 << 20

// Parse builds a tree from an HTML fragment.
// A <mark> carrying a highlight id becomes a marker holding its flattened text;
// markers nested inside markers are flattened into the outer one.
func Parse(src string) (*Tree, error) {
	if len(src) > MaxContentSize {
		return nil, fmt.Errorf("content exceeds %d bytes", MaxContentSize)
	}
	if !utf8.ValidString(src) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, err
	}

	t := New()
	for _, n := range nodes {
		if err := t.importNode(t.root, n); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) importNode(parent NodeID, n *html.Node) error {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return nil
		}
		return t.AppendChild(parent, t.NewText(n.Data))
	case html.CommentNode:
		return t.AppendChild(parent, t.NewComment(n.Data))
	case html.ElementNode:
		m, ok, err := markerFromHTML(n)
		if err != nil {
			return err
		}
		if ok {
			id := t.NewMarker(m)
			if err := t.AppendChild(parent, id); err != nil {
				return err
			}
			if text := htmlText(n); text != "" {
				return t.AppendChild(id, t.NewText(text))
			}
			return nil
		}
		id := t.NewElement(n.Data, n.Namespace, n.Attr)
		if err := t.AppendChild(parent, id); err != nil {
			return err
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := t.importNode(id, c); err != nil {
				return err
			}
		}
	}
	return nil
}

func markerFromHTML(n *html.Node) (Marker, bool, error) {
	if n.Data != MarkerTag || n.Namespace != "" {
		return Marker{}, false, nil
	}
	var m Marker
	var rawColor string
	for _, a := range n.Attr {
		switch a.Key {
		case AttrHighlightID:
			m.HighlightID = a.Val
		case AttrColor:
			rawColor = a.Val
		case AttrNote:
			m.Note = a.Val
		}
	}
	// a plain <mark> from the article itself is not a highlight
	if m.HighlightID == "" {
		return Marker{}, false, nil
	}
	color, ok := domain.ParseColor(rawColor)
	if !ok {
		return Marker{}, false, fmt.Errorf("highlight %s has unknown color %q", m.HighlightID, rawColor)
	}
	m.Color = color
	return m, true, nil
}

func htmlText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// Render serializes the tree back to an HTML fragment
func Render(t *Tree) (string, error) {
	var b strings.Builder
	for _, c := range t.Children(t.root) {
		if err := html.Render(&b, t.exportNode(c)); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (t *Tree) exportNode(id NodeID) *html.Node {
	n := &t.nodes[id]
	var out *html.Node
	switch n.kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case KindComment:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	case KindMarker:
		out = &html.Node{
			Type:     html.ElementNode,
			Data:     MarkerTag,
			DataAtom: atom.Mark,
			Attr:     MarkerAttributes(n.marker),
		}
	default:
		out = &html.Node{
			Type:      html.ElementNode,
			Data:      n.data,
			DataAtom:  atom.Lookup([]byte(n.data)),
			Namespace: n.namespace,
			Attr:      cloneAttrs(n.attrs),
		}
	}
	for c := n.firstChild; c != 0; c = t.nodes[c].next {
		out.AppendChild(t.exportNode(c))
	}
	return out
}

// MarkerAttributes returns the HTML attributes that encode m
func MarkerAttributes(m Marker) []html.Attribute {
	attrs := []html.Attribute{
		{Key: "class", Val: MarkerClass + " " + MarkerClass + "-" + string(m.Color)},
		{Key: AttrHighlightID, Val: m.HighlightID},
		{Key: AttrColor, Val: string(m.Color)},
	}
	if m.Note != "" {
		attrs = append(attrs, html.Attribute{Key: AttrNote, Val: m.Note})
	}
	return attrs
}
