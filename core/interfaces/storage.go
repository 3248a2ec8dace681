// ABOUTME: Storage interfaces for persisting domain entities
// ABOUTME: Defines contracts for article persistence and change notification

package interfaces

import (
	"context"

	"highlights-app-api/core/domain"
)

// ArticleStore defines the interface for article persistence.
// Articles are always scoped to the user that saved them.
type ArticleStore interface {
	// Create persists a new article. CreatedAt is assigned by the store when zero.
	Create(ctx context.Context, article *domain.Article) error

	// Get retrieves an article by ID. Returns a NotFoundError when absent.
	Get(ctx context.Context, userID, id string) (*domain.Article, error)

	// List returns every article of the user, newest first
	List(ctx context.Context, userID string) ([]*domain.Article, error)

	// Update replaces the mutable fields of an existing article
	Update(ctx context.Context, article *domain.Article) error

	// UpdateContent writes content and its derived highlight records together
	UpdateContent(ctx context.Context, userID, id, content string, highlights []domain.HighlightRecord) error

	// Delete removes an article. Returns a NotFoundError when absent.
	Delete(ctx context.Context, userID, id string) error
}

// ChangeBroker fans out "articles changed" notifications per user
type ChangeBroker interface {
	// Publish announces that the user's articles changed
	Publish(ctx context.Context, userID string) error

	// Subscribe returns a channel that receives a value after every change.
	// The returned cancel func releases the subscription.
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, func(), error)
}
