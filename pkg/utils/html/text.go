// ABOUTME: HTML text helpers for article statistics
// ABOUTME: Plain text extraction, text length, word count and reading time

package html

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CharsPerMinute is the reading speed used for reading time estimates
const CharsPerMinute = 1000

// blockTags end a run of text; their content is separated from the next block
var blockTags = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

var skippedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true, atom.Template: true,
}

// StripHTML returns the visible text of an HTML fragment with runs of
// whitespace collapsed to single spaces. Block elements are separated by a space.
func StripHTML(fragment string) string {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skippedTags[n.DataAtom] {
				return
			}
		}
		block := n.Type == html.ElementNode && blockTags[n.DataAtom]
		if block {
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TextLength counts the characters of text
func TextLength(text string) int {
	return utf8.RuneCountInString(text)
}

// WordCount counts whitespace separated words in text
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates minutes to read textLength characters, at least 1
func ReadingTime(textLength int) int {
	minutes := (textLength + CharsPerMinute - 1) / CharsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
