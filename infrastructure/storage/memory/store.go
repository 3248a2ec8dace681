// ABOUTME: In-memory ArticleStore used for development and tests
// ABOUTME: Articles are copied on the way in and out so callers never share state with the store

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"github.com/google/uuid"
)

// Store implements interfaces.ArticleStore in process memory
type Store struct {
	mu       sync.RWMutex
	articles map[string]map[string]*domain.Article
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{articles: make(map[string]map[string]*domain.Article)}
}

func clone(a *domain.Article) *domain.Article {
	cp := *a
	cp.Highlights = append([]domain.HighlightRecord{}, a.Highlights...)
	cp.Tags = append([]string{}, a.Tags...)
	return &cp
}

func notFound(id string) error {
	return &errors.NotFoundError{Resource: "article", ID: id}
}

// Create persists a new article
func (s *Store) Create(ctx context.Context, article *domain.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if article.UserID == "" {
		return &errors.ValidationError{Field: "userId", Message: "user id cannot be empty"}
	}
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.articles[article.UserID]
	if !ok {
		byID = make(map[string]*domain.Article)
		s.articles[article.UserID] = byID
	}
	if _, exists := byID[article.ID]; exists {
		return &errors.ValidationError{Field: "id", Message: "article already exists"}
	}
	byID[article.ID] = clone(article)
	return nil
}

// Get retrieves an article by ID
func (s *Store) Get(ctx context.Context, userID, id string) (*domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.articles[userID][id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(a), nil
}

// List returns every article of the user, newest first
func (s *Store) List(ctx context.Context, userID string) ([]*domain.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]*domain.Article, 0, len(s.articles[userID]))
	for _, a := range s.articles[userID] {
		out = append(out, clone(a))
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Update replaces the mutable fields of an existing article. Content and
// highlights only change through UpdateContent.
func (s *Store) Update(ctx context.Context, article *domain.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[article.UserID][article.ID]
	if !ok {
		return notFound(article.ID)
	}
	a.Title = article.Title
	a.Tags = append([]string{}, article.Tags...)
	a.IsFavorite = article.IsFavorite
	a.IsArchived = article.IsArchived
	a.ReadingTime = article.ReadingTime
	return nil
}

// UpdateContent writes content and highlight records together
func (s *Store) UpdateContent(ctx context.Context, userID, id, content string, highlights []domain.HighlightRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.articles[userID][id]
	if !ok {
		return notFound(id)
	}
	a.Content = content
	a.Highlights = append([]domain.HighlightRecord{}, highlights...)
	return nil
}

// Delete removes an article
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.articles[userID][id]; !ok {
		return notFound(id)
	}
	delete(s.articles[userID], id)
	return nil
}
