package highlight

import (
	"testing"

	"highlights-app-api/core/content"
	coreerrors "highlights-app-api/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeFromTextOffsets(t *testing.T) {
	tree := mustParse(t, `<p>one <b>two</b> three</p>`)

	rng, err := RangeFromTextOffsets(tree, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, "one ", tree.Text(rng.Start.Node))
	assert.Equal(t, 2, rng.Start.Offset)
	assert.Equal(t, " three", tree.Text(rng.End.Node))
	assert.Equal(t, 3, rng.End.Offset)
}

func TestRangeFromTextOffsets_EndOnRunBoundary(t *testing.T) {
	tree := mustParse(t, `<p>one <b>two</b> three</p>`)

	rng, err := RangeFromTextOffsets(tree, 4, 7)
	require.NoError(t, err)

	assert.Equal(t, "two", tree.Text(rng.Start.Node))
	assert.Equal(t, 0, rng.Start.Offset)
	assert.Equal(t, "two", tree.Text(rng.End.Node))
	assert.Equal(t, 3, rng.End.Offset)
}

func TestRangeFromTextOffsets_Errors(t *testing.T) {
	tree := mustParse(t, `<p>short</p>`)

	_, err := RangeFromTextOffsets(tree, 2, 2)
	assert.True(t, coreerrors.IsEmptySelection(err))

	_, err = RangeFromTextOffsets(tree, -1, 2)
	assert.True(t, coreerrors.IsValidation(err))

	_, err = RangeFromTextOffsets(tree, 2, 50)
	assert.True(t, coreerrors.IsValidation(err))
}

func TestRangeFromTextOffsets_CountsRunes(t *testing.T) {
	tree := mustParse(t, `<p>héllo wörld</p>`)

	rng, err := RangeFromTextOffsets(tree, 6, 11)
	require.NoError(t, err)
	anchor, err := Resolve(tree, rng)
	require.NoError(t, err)

	assert.Equal(t, "wörld", anchor.Text())
}

func TestResolve_DropsWhitespaceRuns(t *testing.T) {
	tree := mustParse(t, `<p>alpha</p> <p>beta</p>`)

	rng, err := RangeFromTextOffsets(tree, 0, 10)
	require.NoError(t, err)
	anchor, err := Resolve(tree, rng)
	require.NoError(t, err)

	require.Len(t, anchor.Runs, 2)
	assert.Equal(t, "alpha", anchor.Runs[0].Text)
	assert.Equal(t, "beta", anchor.Runs[1].Text)
}

func TestResolve_WhitespaceOnlySelection(t *testing.T) {
	tree := mustParse(t, `<p>alpha   beta</p>`)

	rng, err := RangeFromTextOffsets(tree, 5, 8)
	require.NoError(t, err)
	_, err = Resolve(tree, rng)

	assert.True(t, coreerrors.IsEmptySelection(err))
}

func TestResolve_CollapsedRange(t *testing.T) {
	tree := mustParse(t, `<p>alpha</p>`)
	text := tree.FirstChild(tree.FirstChild(tree.Root()))

	_, err := Resolve(tree, Range{Start: Point{Node: text, Offset: 2}, End: Point{Node: text, Offset: 2}})

	assert.True(t, coreerrors.IsEmptySelection(err))
}

func TestResolve_BackwardRangeIsNormalized(t *testing.T) {
	tree := mustParse(t, `<p>one <b>two</b> three</p>`)
	forward, err := RangeFromTextOffsets(tree, 2, 10)
	require.NoError(t, err)

	backward := Range{Start: forward.End, End: forward.Start}
	anchor, err := Resolve(tree, backward)
	require.NoError(t, err)

	assert.Equal(t, forward, anchor.Range)
	assert.Equal(t, "e two th", anchor.Text())
}

func TestResolve_IsIdempotent(t *testing.T) {
	tree := mustParse(t, `<p>one <b>two</b> three</p>`)
	rng, err := RangeFromTextOffsets(tree, 1, 12)
	require.NoError(t, err)
	before := mustRender(t, tree)
	version := tree.Version()

	first, err := Resolve(tree, rng)
	require.NoError(t, err)
	second, err := Resolve(tree, rng)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, version, tree.Version())
	assert.Equal(t, before, mustRender(t, tree))
}

func TestResolve_RejectsDetachedNode(t *testing.T) {
	tree := mustParse(t, `<p>alpha</p>`)
	orphan := tree.NewText("orphan")

	_, err := Resolve(tree, Range{Start: Point{Node: orphan}, End: Point{Node: orphan, Offset: 3}})

	assert.True(t, coreerrors.IsAnchorStale(err))
}

func TestResolve_RejectsOffsetOutsideRun(t *testing.T) {
	tree := mustParse(t, `<p>alpha</p>`)
	text := tree.FirstChild(tree.FirstChild(tree.Root()))

	_, err := Resolve(tree, Range{Start: Point{Node: text}, End: Point{Node: text, Offset: 9}})

	assert.True(t, coreerrors.IsValidation(err))
}

func TestExtract_DetachesRange(t *testing.T) {
	tree := mustParse(t, `<p>one <b>two</b> three</p>`)
	rng, err := RangeFromTextOffsets(tree, 2, 10)
	require.NoError(t, err)
	anchor, err := Resolve(tree, rng)
	require.NoError(t, err)

	frag, err := Extract(tree, anchor)
	require.NoError(t, err)

	var extracted string
	for _, id := range frag.Nodes {
		extracted += tree.TextContent(id)
	}
	assert.Equal(t, "e two th", extracted)
	assert.Equal(t, "onree", tree.TextContent(tree.Root()))
	assert.Equal(t, content.KindElement, tree.Kind(frag.Nodes[1]))
}

func TestExtract_StaleAnchor(t *testing.T) {
	tree := mustParse(t, `<p>alpha beta</p>`)
	rng, err := RangeFromTextOffsets(tree, 0, 5)
	require.NoError(t, err)
	anchor, err := Resolve(tree, rng)
	require.NoError(t, err)

	require.NoError(t, tree.SetText(rng.Start.Node, "changed text"))
	_, err = Extract(tree, anchor)

	assert.True(t, coreerrors.IsAnchorStale(err))
}
