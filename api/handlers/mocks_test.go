package handlers

import (
	"context"
	"sync"
	"time"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
)

// fakeLibrary is an in-memory LibraryService keyed by user
type fakeLibrary struct {
	mu       sync.Mutex
	articles map[string]*domain.Article // userID/id
	users    []string
	err      error
	exported string

	subscribed chan func([]*domain.Article)
}

func newFakeLibrary(articles ...*domain.Article) *fakeLibrary {
	l := &fakeLibrary{
		articles:   make(map[string]*domain.Article),
		subscribed: make(chan func([]*domain.Article), 1),
	}
	for _, a := range articles {
		l.articles[a.UserID+"/"+a.ID] = a
	}
	return l
}

func (l *fakeLibrary) seen(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.users = append(l.users, userID)
}

func (l *fakeLibrary) lastUser() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.users) == 0 {
		return ""
	}
	return l.users[len(l.users)-1]
}

func (l *fakeLibrary) get(userID, id string) (*domain.Article, error) {
	l.seen(userID)
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.articles[userID+"/"+id]
	if !ok {
		return nil, &errors.NotFoundError{Resource: "article", ID: id}
	}
	return a, nil
}

func (l *fakeLibrary) SaveFromURL(_ context.Context, userID, url string) (*domain.Article, error) {
	l.seen(userID)
	if l.err != nil {
		return nil, l.err
	}
	a := &domain.Article{ID: "new-article", UserID: userID, URL: url, Title: "Saved", Content: "<p>Saved text.</p>", CreatedAt: time.Now()}
	l.mu.Lock()
	l.articles[userID+"/"+a.ID] = a
	l.mu.Unlock()
	return a, nil
}

func (l *fakeLibrary) Get(_ context.Context, userID, id string) (*domain.Article, error) {
	return l.get(userID, id)
}

func (l *fakeLibrary) List(_ context.Context, userID string, filter domain.ArticleFilter) ([]*domain.Article, error) {
	l.seen(userID)
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*domain.Article
	for _, a := range l.articles {
		if a.UserID == userID && filter.Match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *fakeLibrary) AddTag(_ context.Context, userID, id, tag string) (*domain.Article, error) {
	a, err := l.get(userID, id)
	if err != nil {
		return nil, err
	}
	a.AddTag(tag)
	return a, nil
}

func (l *fakeLibrary) RemoveTag(_ context.Context, userID, id, tag string) (*domain.Article, error) {
	a, err := l.get(userID, id)
	if err != nil {
		return nil, err
	}
	a.RemoveTag(tag)
	return a, nil
}

func (l *fakeLibrary) ToggleFavorite(_ context.Context, userID, id string) (*domain.Article, error) {
	a, err := l.get(userID, id)
	if err != nil {
		return nil, err
	}
	a.IsFavorite = !a.IsFavorite
	return a, nil
}

func (l *fakeLibrary) ToggleArchive(_ context.Context, userID, id string) (*domain.Article, error) {
	a, err := l.get(userID, id)
	if err != nil {
		return nil, err
	}
	a.IsArchived = !a.IsArchived
	return a, nil
}

func (l *fakeLibrary) Delete(_ context.Context, userID, id string) error {
	if _, err := l.get(userID, id); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.articles, userID+"/"+id)
	return nil
}

func (l *fakeLibrary) Random(ctx context.Context, userID string) (*domain.Article, error) {
	archived := false
	active, err := l.List(ctx, userID, domain.ArticleFilter{Archived: &archived})
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, &errors.NotFoundError{Resource: "article", ID: "random"}
	}
	return active[0], nil
}

func (l *fakeLibrary) Subscribe(ctx context.Context, userID string, onChange func([]*domain.Article)) (func(), error) {
	l.seen(userID)
	if l.err != nil {
		return nil, l.err
	}
	articles, _ := l.List(ctx, userID, domain.ArticleFilter{})
	onChange(articles)
	l.subscribed <- onChange
	return func() {}, nil
}

func (l *fakeLibrary) Highlights(_ context.Context, userID, articleID string) ([]domain.HighlightRecord, error) {
	a, err := l.get(userID, articleID)
	if err != nil {
		return nil, err
	}
	return a.Highlights, nil
}

func (l *fakeLibrary) CreateHighlight(_ context.Context, userID, articleID string, start, end int, color, note string) (domain.HighlightRecord, error) {
	a, err := l.get(userID, articleID)
	if err != nil {
		return domain.HighlightRecord{}, err
	}
	if start == end {
		return domain.HighlightRecord{}, &errors.EmptySelectionError{Reason: "collapsed range"}
	}
	c := domain.ColorYellow
	if color != "" {
		c = domain.Color(color)
	}
	rec := domain.HighlightRecord{ID: "highlight-1-abcdefghi", Text: "Saved", Color: c, Note: note}
	a.Highlights = append(a.Highlights, rec)
	return rec, nil
}

func (l *fakeLibrary) UpdateHighlight(_ context.Context, userID, articleID, highlightID string, upd domain.HighlightUpdate) (domain.HighlightRecord, error) {
	a, err := l.get(userID, articleID)
	if err != nil {
		return domain.HighlightRecord{}, err
	}
	for i := range a.Highlights {
		if a.Highlights[i].ID != highlightID {
			continue
		}
		if upd.Color != nil {
			a.Highlights[i].Color = domain.Color(*upd.Color)
		}
		if upd.Note != nil {
			a.Highlights[i].Note = *upd.Note
		}
		return a.Highlights[i], nil
	}
	return domain.HighlightRecord{}, &errors.NotFoundError{Resource: "highlight", ID: highlightID}
}

func (l *fakeLibrary) DeleteHighlight(_ context.Context, userID, articleID, highlightID string) error {
	a, err := l.get(userID, articleID)
	if err != nil {
		return err
	}
	for i := range a.Highlights {
		if a.Highlights[i].ID == highlightID {
			a.Highlights = append(a.Highlights[:i], a.Highlights[i+1:]...)
			return nil
		}
	}
	return &errors.NotFoundError{Resource: "highlight", ID: highlightID}
}

func (l *fakeLibrary) ExportMarkdown(_ context.Context, userID, articleID string) (string, error) {
	if _, err := l.get(userID, articleID); err != nil {
		return "", err
	}
	return l.exported, nil
}

// fakeReader returns one ok view per URL
type fakeReader struct{}

func (fakeReader) ExtractArticle(_ context.Context, url string) (*domain.ReaderView, error) {
	return &domain.ReaderView{URL: url, Status: "ok"}, nil
}

func (r fakeReader) ExtractReaderViews(ctx context.Context, urls []string) []domain.ReaderView {
	out := make([]domain.ReaderView, 0, len(urls))
	for _, u := range urls {
		v, _ := r.ExtractArticle(ctx, u)
		out = append(out, *v)
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
