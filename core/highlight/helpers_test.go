package highlight

import (
	"context"
	"sync"
	"testing"

	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
	coreerrors "highlights-app-api/core/errors"
	"highlights-app-api/core/workers"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

func mustParse(t *testing.T, src string) *content.Tree {
	t.Helper()
	tree, err := content.Parse(src)
	require.NoError(t, err)
	return tree
}

func mustRender(t *testing.T, tree *content.Tree) string {
	t.Helper()
	out, err := content.Render(tree)
	require.NoError(t, err)
	return out
}

// highlightText resolves rune offsets into the document text and applies m
func highlightText(t *testing.T, tree *content.Tree, start, end int, m content.Marker) {
	t.Helper()
	rng, err := RangeFromTextOffsets(tree, start, end)
	require.NoError(t, err)
	anchor, err := Resolve(tree, rng)
	require.NoError(t, err)
	require.NoError(t, Apply(tree, anchor, m))
}

func yellow(id string) content.Marker {
	return content.Marker{HighlightID: id, Color: domain.ColorYellow}
}

// recordingPersister captures jobs. With hold set, jobs wait until release.
type recordingPersister struct {
	mu        sync.Mutex
	jobs      []*workers.PersistJob
	held      []*workers.PersistJob
	hold      bool
	failWith  error
	submitErr error
}

func (p *recordingPersister) Submit(job *workers.PersistJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.submitErr != nil {
		return p.submitErr
	}
	p.jobs = append(p.jobs, job)
	if p.hold {
		p.held = append(p.held, job)
		return nil
	}
	job.Done(p.result(job))
	return nil
}

func (p *recordingPersister) result(job *workers.PersistJob) error {
	if p.failWith == nil {
		return nil
	}
	return &coreerrors.PersistenceError{ArticleID: job.ArticleID, Err: p.failWith}
}

func (p *recordingPersister) release() {
	p.mu.Lock()
	held := p.held
	p.held = nil
	p.hold = false
	p.mu.Unlock()
	for _, job := range held {
		job.Done(p.result(job))
	}
}

func (p *recordingPersister) submitted() []*workers.PersistJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*workers.PersistJob, len(p.jobs))
	copy(out, p.jobs)
	return out
}

// memoryStore is a minimal ArticleStore for workspace tests
type memoryStore struct {
	mu       sync.Mutex
	articles map[string]*domain.Article
}

func newMemoryStore(articles ...*domain.Article) *memoryStore {
	s := &memoryStore{articles: make(map[string]*domain.Article)}
	for _, a := range articles {
		s.articles[a.UserID+"/"+a.ID] = a
	}
	return s
}

func (s *memoryStore) Create(_ context.Context, a *domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.UserID+"/"+a.ID] = a
	return nil
}

func (s *memoryStore) Get(_ context.Context, userID, id string) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[userID+"/"+id]
	if !ok {
		return nil, &coreerrors.NotFoundError{Resource: "article", ID: id}
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) List(_ context.Context, userID string) ([]*domain.Article, error) {
	return nil, nil
}

func (s *memoryStore) Update(_ context.Context, a *domain.Article) error {
	return s.Create(context.Background(), a)
}

func (s *memoryStore) UpdateContent(_ context.Context, userID, id, html string, records []domain.HighlightRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[userID+"/"+id]
	if !ok {
		return &coreerrors.NotFoundError{Resource: "article", ID: id}
	}
	a.Content = html
	a.Highlights = records
	return nil
}

func (s *memoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.articles, userID+"/"+id)
	return nil
}

func domainMarker(id string, color domain.Color, note string) content.Marker {
	return content.Marker{HighlightID: id, Color: color, Note: note}
}
