// ABOUTME: Article library service: saving, listing, tagging and deleting a user's articles
// ABOUTME: Content and highlights of open articles always come from their highlight editor

package library

import (
	"context"
	"math/rand/v2"
	"strings"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"highlights-app-api/core/highlight"
	"highlights-app-api/core/interfaces"
)

// Service implements the article library
type Service struct {
	store     interfaces.ArticleStore
	broker    interfaces.ChangeBroker
	reader    interfaces.ReaderService
	workspace *highlight.Workspace
	logger    interfaces.Logger
}

// NewService creates a library service. deps.Broker may be nil.
func NewService(deps interfaces.Dependencies, reader interfaces.ReaderService, workspace *highlight.Workspace) *Service {
	return &Service{
		store:     deps.Store,
		broker:    deps.Broker,
		reader:    reader,
		workspace: workspace,
		logger:    deps.Logger,
	}
}

// SaveFromURL extracts the page at pageURL and saves it with no highlights
func (s *Service) SaveFromURL(ctx context.Context, userID, pageURL string) (*domain.Article, error) {
	view, err := s.reader.ExtractArticle(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	article, err := domain.NewArticle(userID, view)
	if err != nil {
		return nil, &errors.ValidationError{Field: "url", Message: err.Error()}
	}

	// Store content in canonical form so later writes only differ by highlights
	tree, err := highlight.Deserialize(article.Content)
	if err != nil {
		return nil, err
	}
	highlight.NormalizeAll(tree)
	if article.Content, article.Highlights, err = highlight.Serialize(tree); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, article); err != nil {
		return nil, errors.WrapError(err, "failed to save article")
	}

	s.logger.Info("Article saved", map[string]interface{}{
		"user_id":    userID,
		"article_id": article.ID,
		"url":        article.URL,
	})
	s.publish(ctx, userID)
	return article, nil
}

// Get returns an article with content and highlights taken from its editor
func (s *Service) Get(ctx context.Context, userID, id string) (*domain.Article, error) {
	article, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	ed, err := s.workspace.Open(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if article.Content, article.Highlights, err = ed.Snapshot(); err != nil {
		return nil, err
	}
	if err := ed.LastError(); err != nil {
		article.PersistError = err.Error()
	}
	return article, nil
}

// List returns the user's articles matching filter, newest first. Highlight
// records are re-derived from content rather than taken from the store.
func (s *Service) List(ctx context.Context, userID string, filter domain.ArticleFilter) ([]*domain.Article, error) {
	all, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Article, 0, len(all))
	for _, a := range all {
		if filter.Match(a) {
			a.Highlights = s.records(a)
			out = append(out, a)
		}
	}
	return out, nil
}

// records returns the highlights of an article from its open editor, or
// from its stored content when it is not open
func (s *Service) records(a *domain.Article) []domain.HighlightRecord {
	if s.workspace != nil {
		if ed, ok := s.workspace.Get(a.UserID, a.ID); ok {
			return ed.Records()
		}
	}
	tree, err := highlight.Deserialize(a.Content)
	if err != nil {
		s.logger.Warn("Listing article with corrupt content", map[string]interface{}{
			"user_id":    a.UserID,
			"article_id": a.ID,
			"error":      err.Error(),
		})
		return nil
	}
	return highlight.Records(tree)
}

func normalizeTag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", &errors.ValidationError{Field: "tag", Message: "tag cannot be empty"}
	}
	return tag, nil
}

// AddTag adds tag to the article. Adding an existing tag is a no-op.
func (s *Service) AddTag(ctx context.Context, userID, id, tag string) (*domain.Article, error) {
	tag, err := normalizeTag(tag)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, userID, id, func(a *domain.Article) bool { return a.AddTag(tag) })
}

// RemoveTag removes tag from the article. Removing a missing tag is a no-op.
func (s *Service) RemoveTag(ctx context.Context, userID, id, tag string) (*domain.Article, error) {
	tag, err := normalizeTag(tag)
	if err != nil {
		return nil, err
	}
	return s.modify(ctx, userID, id, func(a *domain.Article) bool { return a.RemoveTag(tag) })
}

// ToggleFavorite flips the favorite flag
func (s *Service) ToggleFavorite(ctx context.Context, userID, id string) (*domain.Article, error) {
	return s.modify(ctx, userID, id, func(a *domain.Article) bool {
		a.IsFavorite = !a.IsFavorite
		return true
	})
}

// ToggleArchive flips the archived flag
func (s *Service) ToggleArchive(ctx context.Context, userID, id string) (*domain.Article, error) {
	return s.modify(ctx, userID, id, func(a *domain.Article) bool {
		a.IsArchived = !a.IsArchived
		return true
	})
}

func (s *Service) modify(ctx context.Context, userID, id string, fn func(*domain.Article) bool) (*domain.Article, error) {
	article, err := s.store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !fn(article) {
		return article, nil
	}
	if err := s.store.Update(ctx, article); err != nil {
		return nil, err
	}
	s.publish(ctx, userID)
	return article, nil
}

// Delete removes an article and closes its editor
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	s.workspace.Close(userID, id)
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("Article deleted", map[string]interface{}{
		"user_id":    userID,
		"article_id": id,
	})
	s.publish(ctx, userID)
	return nil
}

// Random picks one of the user's non-archived articles
func (s *Service) Random(ctx context.Context, userID string) (*domain.Article, error) {
	archived := false
	active, err := s.List(ctx, userID, domain.ArticleFilter{Archived: &archived})
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, &errors.NotFoundError{Resource: "article", ID: "random"}
	}
	return active[rand.IntN(len(active))], nil
}

// Subscribe calls onChange with the user's full article list now and after
// every change, until ctx ends or the returned cancel func is called.
// cancel waits for the delivery goroutine and must not be called from onChange.
func (s *Service) Subscribe(ctx context.Context, userID string, onChange func([]*domain.Article)) (func(), error) {
	if s.broker == nil {
		return nil, &errors.ValidationError{Field: "broker", Message: "change notifications are not configured"}
	}

	ctx, cancelCtx := context.WithCancel(ctx)
	changes, unsubscribe, err := s.broker.Subscribe(ctx, userID)
	if err != nil {
		cancelCtx()
		return nil, err
	}

	push := func() {
		articles, err := s.List(ctx, userID, domain.ArticleFilter{})
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("Failed to list articles for subscriber", map[string]interface{}{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
			return
		}
		onChange(articles)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		push()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				push()
			}
		}
	}()

	return func() {
		cancelCtx()
		unsubscribe()
		<-done
	}, nil
}

func (s *Service) publish(ctx context.Context, userID string) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, userID); err != nil {
		s.logger.Warn("Failed to publish article change", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

var _ interfaces.LibraryService = (*Service)(nil)
