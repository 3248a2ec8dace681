// ABOUTME: Shared behavioural tests for ArticleStore implementations
// ABOUTME: Each backend runs the same suite against a fresh store

package storetest

import (
	"context"
	"testing"
	"time"

	"highlights-app-api/core/domain"
	coreerrors "highlights-app-api/core/errors"
	"highlights-app-api/core/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(userID, id string, created time.Time) *domain.Article {
	return &domain.Article{
		ID:          id,
		UserID:      userID,
		URL:         "https://example.com/" + id,
		Title:       "Title " + id,
		Content:     "<p>content " + id + "</p>",
		Highlights:  []domain.HighlightRecord{},
		Tags:        []string{},
		ReadingTime: 1,
		CreatedAt:   created,
	}
}

// Run exercises store through newStore, which must return an empty store
func Run(t *testing.T, newStore func(t *testing.T) interfaces.ArticleStore) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		store := newStore(t)
		a := article("u1", "a1", base)
		a.Tags = []string{"go"}
		require.NoError(t, store.Create(ctx, a))

		got, err := store.Get(ctx, "u1", "a1")
		require.NoError(t, err)
		assert.Equal(t, a.URL, got.URL)
		assert.Equal(t, a.Content, got.Content)
		assert.Equal(t, []string{"go"}, got.Tags)
		assert.Empty(t, got.Highlights)
		assert.True(t, base.Equal(got.CreatedAt))
	})

	t.Run("create assigns id and time", func(t *testing.T) {
		store := newStore(t)
		a := article("u1", "", time.Time{})
		require.NoError(t, store.Create(ctx, a))

		assert.NotEmpty(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
		_, err := store.Get(ctx, "u1", a.ID)
		assert.NoError(t, err)
	})

	t.Run("articles are scoped to users", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, article("u1", "a1", base)))

		_, err := store.Get(ctx, "u2", "a1")
		assert.True(t, coreerrors.IsNotFound(err))

		list, err := store.List(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("get missing", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Get(ctx, "u1", "nope")
		assert.True(t, coreerrors.IsNotFound(err))
	})

	t.Run("list newest first", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, article("u1", "old", base)))
		require.NoError(t, store.Create(ctx, article("u1", "new", base.Add(time.Hour))))
		require.NoError(t, store.Create(ctx, article("u1", "mid", base.Add(time.Minute))))

		list, err := store.List(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "new", list[0].ID)
		assert.Equal(t, "mid", list[1].ID)
		assert.Equal(t, "old", list[2].ID)
	})

	t.Run("update keeps content", func(t *testing.T) {
		store := newStore(t)
		a := article("u1", "a1", base)
		require.NoError(t, store.Create(ctx, a))

		changed := *a
		changed.Tags = []string{"later", "go"}
		changed.IsFavorite = true
		changed.IsArchived = true
		changed.Content = "<p>ignored</p>"
		require.NoError(t, store.Update(ctx, &changed))

		got, err := store.Get(ctx, "u1", "a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"later", "go"}, got.Tags)
		assert.True(t, got.IsFavorite)
		assert.True(t, got.IsArchived)
		assert.Equal(t, a.Content, got.Content)
	})

	t.Run("update missing", func(t *testing.T) {
		store := newStore(t)
		err := store.Update(ctx, article("u1", "nope", base))
		assert.True(t, coreerrors.IsNotFound(err))
	})

	t.Run("update content writes both representations", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, article("u1", "a1", base)))

		records := []domain.HighlightRecord{
			{ID: "h1", Text: "content", Color: domain.ColorPink, Note: "n"},
		}
		html := `<p><mark class="highlight highlight-pink" data-highlight-id="h1" data-color="pink" data-note="n">content</mark> a1</p>`
		require.NoError(t, store.UpdateContent(ctx, "u1", "a1", html, records))

		got, err := store.Get(ctx, "u1", "a1")
		require.NoError(t, err)
		assert.Equal(t, html, got.Content)
		assert.Equal(t, records, got.Highlights)

		err = store.UpdateContent(ctx, "u1", "nope", html, records)
		assert.True(t, coreerrors.IsNotFound(err))
	})

	t.Run("returned articles are copies", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, article("u1", "a1", base)))

		got, err := store.Get(ctx, "u1", "a1")
		require.NoError(t, err)
		got.Tags = append(got.Tags, "mutated")
		got.Title = "mutated"

		again, err := store.Get(ctx, "u1", "a1")
		require.NoError(t, err)
		assert.Empty(t, again.Tags)
		assert.Equal(t, "Title a1", again.Title)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, article("u1", "a1", base)))

		require.NoError(t, store.Delete(ctx, "u1", "a1"))
		_, err := store.Get(ctx, "u1", "a1")
		assert.True(t, coreerrors.IsNotFound(err))

		err = store.Delete(ctx, "u1", "a1")
		assert.True(t, coreerrors.IsNotFound(err))
	})
}
