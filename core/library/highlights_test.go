package library

import (
	"context"
	"strings"
	"testing"

	"highlights-app-api/core/domain"
	coreerrors "highlights-app-api/core/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateHighlight_PersistsContentAndRecords(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)

	rec, err := env.svc.CreateHighlight(ctx, userID, article.ID, 6, 10, "", "  remember  ")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.ID, "highlight-"))
	assert.Equal(t, "beta", rec.Text)
	assert.Equal(t, domain.ColorYellow, rec.Color)
	assert.Equal(t, "remember", rec.Note)

	env.flush(t, article.ID)

	stored, err := env.store.Get(ctx, userID, article.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Content, `data-highlight-id="`+rec.ID+`"`)
	assert.Equal(t, []domain.HighlightRecord{rec}, stored.Highlights)

	got, err := env.svc.Get(ctx, userID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Content, got.Content)
	assert.Equal(t, stored.Highlights, got.Highlights)
}

func TestCreateHighlight_AcrossBlocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)

	rec, err := env.svc.CreateHighlight(ctx, userID, article.ID, 11, 22, "sky", "")
	require.NoError(t, err)

	assert.Equal(t, "gamma.Delta", rec.Text)
	assert.Equal(t, domain.ColorSky, rec.Color)

	records, err := env.svc.Highlights(ctx, userID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.HighlightRecord{rec}, records)
}

func TestCreateHighlight_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)

	tests := []struct {
		name       string
		articleID  string
		start, end int
		color      string
		check      func(error) bool
	}{
		{"unknown color", article.ID, 0, 5, "purple", coreerrors.IsValidation},
		{"collapsed", article.ID, 3, 3, "", coreerrors.IsEmptySelection},
		{"whitespace only", article.ID, 5, 6, "", coreerrors.IsEmptySelection},
		{"beyond content", article.ID, 0, 500, "", coreerrors.IsValidation},
		{"missing article", "missing", 0, 5, "", coreerrors.IsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateHighlight(ctx, userID, tt.articleID, tt.start, tt.end, tt.color, "")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}

	records, err := env.svc.Highlights(ctx, userID, article.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUpdateHighlight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)
	rec, err := env.svc.CreateHighlight(ctx, userID, article.ID, 0, 5, "yellow", "")
	require.NoError(t, err)

	got, err := env.svc.UpdateHighlight(ctx, userID, article.ID, rec.ID, domain.HighlightUpdate{
		Color: strPtr("Pink"),
		Note:  strPtr("first word"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ColorPink, got.Color)
	assert.Equal(t, "first word", got.Note)
	assert.Equal(t, "Alpha", got.Text)

	got, err = env.svc.UpdateHighlight(ctx, userID, article.ID, rec.ID, domain.HighlightUpdate{Note: strPtr("   ")})
	require.NoError(t, err)
	assert.Empty(t, got.Note)
	assert.Equal(t, domain.ColorPink, got.Color)

	env.flush(t, article.ID)
	stored, err := env.store.Get(ctx, userID, article.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.HighlightRecord{got}, stored.Highlights)
	assert.NotContains(t, stored.Content, "data-note")
}

func TestUpdateHighlight_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)
	rec, err := env.svc.CreateHighlight(ctx, userID, article.ID, 0, 5, "", "")
	require.NoError(t, err)

	_, err = env.svc.UpdateHighlight(ctx, userID, article.ID, rec.ID, domain.HighlightUpdate{})
	assert.True(t, coreerrors.IsValidation(err))

	_, err = env.svc.UpdateHighlight(ctx, userID, article.ID, rec.ID, domain.HighlightUpdate{Color: strPtr("mauve")})
	assert.True(t, coreerrors.IsValidation(err))

	_, err = env.svc.UpdateHighlight(ctx, userID, article.ID, "highlight-0-missing", domain.HighlightUpdate{Note: strPtr("x")})
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestDeleteHighlight(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)
	rec, err := env.svc.CreateHighlight(ctx, userID, article.ID, 11, 22, "", "")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteHighlight(ctx, userID, article.ID, rec.ID))
	env.flush(t, article.ID)

	stored, err := env.store.Get(ctx, userID, article.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Highlights)
	assert.NotContains(t, stored.Content, "<mark")
	assert.Contains(t, stored.Content, "Alpha beta gamma.")

	err = env.svc.DeleteHighlight(ctx, userID, article.ID, rec.ID)
	assert.True(t, coreerrors.IsNotFound(err))
}

func TestExportMarkdown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	article := env.save(t, postURL)
	_, err := env.svc.CreateHighlight(ctx, userID, article.ID, 6, 10, "", "remember")
	require.NoError(t, err)

	out, err := env.svc.ExportMarkdown(ctx, userID, article.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Saved Post\n\n**Source:** "+postURL))
	assert.Contains(t, out, "Alpha ==beta== gamma.")
	assert.Contains(t, out, "## Highlights\n\n- beta\n  - Note: remember\n")
}

func TestExportMarkdown_NoHighlights(t *testing.T) {
	env := newTestEnv(t)
	article := env.save(t, postURL)

	out, err := env.svc.ExportMarkdown(context.Background(), userID, article.ID)
	require.NoError(t, err)

	assert.NotContains(t, out, "==")
	assert.NotContains(t, out, "## Highlights")
}
