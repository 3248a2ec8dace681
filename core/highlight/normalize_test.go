package highlight

import (
	"testing"

	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fragmentedTree(t *testing.T) (*content.Tree, content.NodeID) {
	t.Helper()
	tree := content.New()
	p := tree.NewElement("p", "", nil)
	require.NoError(t, tree.AppendChild(tree.Root(), p))
	for _, s := range []string{"a", "b", "c"} {
		m := tree.NewMarker(yellow("h1"))
		require.NoError(t, tree.AppendChild(p, m))
		require.NoError(t, tree.AppendChild(m, tree.NewText(s)))
	}
	return tree, p
}

func TestNormalize_MergesChainOfFragments(t *testing.T) {
	tree, p := fragmentedTree(t)

	Normalize(tree, "h1")

	children := tree.Children(p)
	require.Len(t, children, 1)
	assert.Equal(t, "abc", tree.TextContent(children[0]))
	assert.Len(t, tree.Children(children[0]), 1)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	tree, _ := fragmentedTree(t)

	Normalize(tree, "h1")
	once := mustRender(t, tree)
	Normalize(tree, "h1")

	assert.Equal(t, once, mustRender(t, tree))
}

func TestNormalize_KeepsNonAdjacentFragments(t *testing.T) {
	tree := mustParse(t, `<p>`+markH1+`a</mark> gap `+markH1+`b</mark></p>`)

	Normalize(tree, "h1")

	assert.Len(t, tree.Markers("h1"), 2)
}

func TestNormalize_LeavesOtherIDsAlone(t *testing.T) {
	tree, p := fragmentedTree(t)
	other := tree.NewMarker(content.Marker{HighlightID: "h2", Color: domain.ColorPink})
	require.NoError(t, tree.InsertBefore(p, other, tree.Children(p)[2]))
	require.NoError(t, tree.AppendChild(other, tree.NewText("x")))

	Normalize(tree, "h1")

	assert.Len(t, tree.Markers("h1"), 2)
	assert.Equal(t, "abc", Records(tree)[0].Text)
}

func TestNormalizeAll_HealsStoredContent(t *testing.T) {
	src := `<p>` + markH1 + `a</mark>` + markH1 + `b</mark></p>` +
		`<p><mark data-highlight-id="h2" data-color="green"></mark>keep</p>`
	tree := mustParse(t, src)

	NormalizeAll(tree)

	assert.Len(t, tree.Markers("h1"), 1)
	assert.Empty(t, tree.Markers("h2"))
	assert.Equal(t, []domain.HighlightRecord{{ID: "h1", Text: "ab", Color: domain.ColorYellow}}, Records(tree))
	assert.Equal(t, "abkeep", tree.TextContent(tree.Root()))
}
