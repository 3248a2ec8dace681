// ABOUTME: Service interfaces for the core business logic
// ABOUTME: Defines contracts for services used throughout the application

package interfaces

import (
	"context"

	"highlights-app-api/core/domain"
)

// ReaderService fetches web pages and extracts their readable content
type ReaderService interface {
	// ExtractArticle fetches url and returns its sanitized reader view
	ExtractArticle(ctx context.Context, url string) (*domain.ReaderView, error)

	// ExtractReaderViews extracts several pages concurrently; failures are
	// reported per entry through ReaderView.Status
	ExtractReaderViews(ctx context.Context, urls []string) []domain.ReaderView
}

// LibraryService manages a user's saved articles and their highlights
type LibraryService interface {
	SaveFromURL(ctx context.Context, userID, url string) (*domain.Article, error)
	Get(ctx context.Context, userID, id string) (*domain.Article, error)
	List(ctx context.Context, userID string, filter domain.ArticleFilter) ([]*domain.Article, error)
	AddTag(ctx context.Context, userID, id, tag string) (*domain.Article, error)
	RemoveTag(ctx context.Context, userID, id, tag string) (*domain.Article, error)
	ToggleFavorite(ctx context.Context, userID, id string) (*domain.Article, error)
	ToggleArchive(ctx context.Context, userID, id string) (*domain.Article, error)
	Delete(ctx context.Context, userID, id string) error
	Random(ctx context.Context, userID string) (*domain.Article, error)

	// Subscribe calls onChange with the user's article list now and after every change
	Subscribe(ctx context.Context, userID string, onChange func([]*domain.Article)) (func(), error)

	Highlights(ctx context.Context, userID, articleID string) ([]domain.HighlightRecord, error)
	CreateHighlight(ctx context.Context, userID, articleID string, start, end int, color, note string) (domain.HighlightRecord, error)
	UpdateHighlight(ctx context.Context, userID, articleID, highlightID string, upd domain.HighlightUpdate) (domain.HighlightRecord, error)
	DeleteHighlight(ctx context.Context, userID, articleID, highlightID string) error

	// ExportMarkdown renders an article and its highlights as Markdown
	ExportMarkdown(ctx context.Context, userID, articleID string) (string, error)
}
