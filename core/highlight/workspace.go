// ABOUTME: Workspace tracks the editors of every open article
// ABOUTME: Loads and heals stored content and feeds store changes to open editors

package highlight

import (
	"context"
	"sync"
	"time"

	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"highlights-app-api/core/interfaces"
)

type editorKey struct {
	userID    string
	articleID string
}

type watch struct {
	refs   int
	cancel func()
}

// Workspace owns one Editor per open article. Articles of different users or
// different articles never share state.
type Workspace struct {
	store     interfaces.ArticleStore
	broker    interfaces.ChangeBroker
	persister Persister
	logger    interfaces.Logger

	mu       sync.Mutex
	editors  map[editorKey]*Editor
	lastUsed map[editorKey]time.Time
	watches  map[string]*watch
	now      func() time.Time
}

// NewWorkspace creates a workspace. deps.Broker may be nil, in which case
// open editors only see their own changes.
func NewWorkspace(deps interfaces.Dependencies, persister Persister) *Workspace {
	return &Workspace{
		store:     deps.Store,
		broker:    deps.Broker,
		persister: persister,
		logger:    deps.Logger,
		editors:   make(map[editorKey]*Editor),
		lastUsed:  make(map[editorKey]time.Time),
		watches:   make(map[string]*watch),
		now:       time.Now,
	}
}

// Open returns the editor of an article, loading it from the store when it
// is not open yet. Stored content is healed and its highlight records
// re-derived; a stale record list is written back. Corrupt content opens as
// an empty article.
func (w *Workspace) Open(ctx context.Context, userID, articleID string) (*Editor, error) {
	key := editorKey{userID: userID, articleID: articleID}
	w.mu.Lock()
	if ed, ok := w.editors[key]; ok {
		w.lastUsed[key] = w.now()
		w.mu.Unlock()
		return ed, nil
	}
	w.mu.Unlock()

	article, err := w.store.Get(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}

	repair := false
	tree, err := Deserialize(article.Content)
	switch {
	case errors.IsContentCorrupt(err):
		w.logger.Error("Stored article content is corrupt, opening it empty", map[string]interface{}{
			"user_id":    userID,
			"article_id": articleID,
			"error":      err.Error(),
		})
		tree = content.New()
	case err != nil:
		return nil, err
	default:
		before := len(tree.AllMarkers())
		NormalizeAll(tree)
		healed := len(tree.AllMarkers()) != before
		repair = healed || !sameRecords(Records(tree), article.Highlights)
	}

	ed := NewEditor(userID, articleID, tree, w.persister, w.logger)

	w.mu.Lock()
	w.lastUsed[key] = w.now()
	if existing, ok := w.editors[key]; ok {
		w.mu.Unlock()
		return existing, nil
	}
	w.editors[key] = ed
	w.watchLocked(userID)
	w.mu.Unlock()

	if repair {
		w.logger.Info("Repairing stored highlight records", map[string]interface{}{
			"user_id":    userID,
			"article_id": articleID,
		})
		if err := ed.Persist(); err != nil {
			w.logger.Warn("Failed to queue repaired records", map[string]interface{}{
				"user_id":    userID,
				"article_id": articleID,
				"error":      err.Error(),
			})
		}
	}
	return ed, nil
}

// Get returns the editor of an open article
func (w *Workspace) Get(userID, articleID string) (*Editor, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ed, ok := w.editors[editorKey{userID: userID, articleID: articleID}]
	return ed, ok
}

// Close forgets the editor of an article. Writes already queued still complete.
func (w *Workspace) Close(userID, articleID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeLocked(editorKey{userID: userID, articleID: articleID})
}

func (w *Workspace) closeLocked(key editorKey) {
	if _, ok := w.editors[key]; !ok {
		return
	}
	delete(w.editors, key)
	delete(w.lastUsed, key)

	userID := key.userID

	if wt, ok := w.watches[userID]; ok {
		wt.refs--
		if wt.refs <= 0 {
			wt.cancel()
			delete(w.watches, userID)
		}
	}
}

// CloseAll forgets every open editor
func (w *Workspace) CloseAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, wt := range w.watches {
		wt.cancel()
	}
	w.editors = make(map[editorKey]*Editor)
	w.lastUsed = make(map[editorKey]time.Time)
	w.watches = make(map[string]*watch)
}

// EvictIdle closes editors not opened for maxIdle. Editors with writes in
// flight or an unsaved change are kept. It returns how many were closed.
func (w *Workspace) EvictIdle(maxIdle time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-maxIdle)
	evicted := 0
	for key, ed := range w.editors {
		if w.lastUsed[key].After(cutoff) {
			continue
		}
		if ed.Pending() > 0 || ed.LastError() != nil {
			continue
		}
		w.closeLocked(key)
		evicted++
	}
	if evicted > 0 {
		w.logger.Debug("Closed idle editors", map[string]interface{}{
			"evicted": evicted,
			"open":    len(w.editors),
		})
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done
func (w *Workspace) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.EvictIdle(maxIdle)
		}
	}
}

// Refresh offers the stored content of every open article of the user to its
// editor. Editors of articles deleted from the store are closed.
func (w *Workspace) Refresh(ctx context.Context, userID string) {
	w.mu.Lock()
	var open []*Editor
	for key, ed := range w.editors {
		if key.userID == userID {
			open = append(open, ed)
		}
	}
	w.mu.Unlock()

	for _, ed := range open {
		article, err := w.store.Get(ctx, userID, ed.ArticleID())
		if errors.IsNotFound(err) {
			w.Close(userID, ed.ArticleID())
			continue
		}
		if err != nil {
			w.logger.Warn("Failed to refresh open article", map[string]interface{}{
				"user_id":    userID,
				"article_id": ed.ArticleID(),
				"error":      err.Error(),
			})
			continue
		}
		_, _ = ed.ApplyExternal(article.Content)
	}
}

func (w *Workspace) watchLocked(userID string) {
	if w.broker == nil {
		return
	}
	if wt, ok := w.watches[userID]; ok {
		wt.refs++
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	changes, unsubscribe, err := w.broker.Subscribe(ctx, userID)
	if err != nil {
		cancel()
		w.logger.Warn("Failed to subscribe to article changes", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				w.Refresh(ctx, userID)
			}
		}
	}()

	w.watches[userID] = &watch{refs: 1, cancel: func() {
		cancel()
		unsubscribe()
	}}
}

func sameRecords(a, b []domain.HighlightRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
