package html

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags", "<p>Hello <b>big</b> world</p>", "Hello big world"},
		{"entities", "<p>Tom &amp; Jerry&nbsp;&lt;3</p>", "Tom & Jerry <3"},
		{"scripts dropped", "<p>a</p><script>var x = 1;</script><style>p{}</style><p>b</p>", "a b"},
		{"paragraphs separated", "<p>first paragraph</p><p>second one</p>", "first paragraph second one"},
		{"list items separated", "<ul><li>x</li><li>y</li></ul>", "x y"},
		{"line break", "one<br>two", "one two"},
		{"inline stays joined", "<p>high<mark>light</mark>ed</p>", "highlighted"},
		{"whitespace collapsed", "<p>  a\n\n  b\t</p>", "a b"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestTextLengthCountsRunes(t *testing.T) {
	assert.Equal(t, 5, TextLength("héllo"))
	assert.Equal(t, 0, TextLength(""))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 3, WordCount("  one two\nthree "))
	assert.Equal(t, 0, WordCount("   "))
}

func TestWordCount_AcrossBlocks(t *testing.T) {
	text := StripHTML("<p>first paragraph</p><p>second one</p><ul><li>x</li><li>y</li></ul>")

	assert.Equal(t, 6, WordCount(text))
	assert.Equal(t, TextLength("first paragraph second one x y"), TextLength(text))
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{0, 1},
		{1, 1},
		{1000, 1},
		{1001, 2},
		{4500, 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadingTime(tt.length), "length %d", tt.length)
	}
	assert.Equal(t, 3, ReadingTime(TextLength(strings.Repeat("x", 2500))))
}
