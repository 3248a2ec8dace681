// ABOUTME: Editor holds the annotation session of one open article
// ABOUTME: Serializes mutations, swaps in trees atomically and persists fire-and-continue

package highlight

import (
	"context"
	"strings"
	"sync"

	"highlights-app-api/core/content"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"highlights-app-api/core/interfaces"
	"highlights-app-api/core/workers"
)

// Persister queues article writes
type Persister interface {
	Submit(job *workers.PersistJob) error
}

// recentWrites bounds how many of our own writes are remembered to recognize echoes
const recentWrites = 8

// Editor is the session state of one article open for annotation.
// Every mutation runs on a clone of the tree and is swapped in only on success,
// so readers never observe a partially applied change.
type Editor struct {
	userID    string
	articleID string
	persister Persister
	logger    interfaces.Logger

	mu       sync.Mutex
	tree     *content.Tree
	inFlight int
	idle     chan struct{}
	written  []string
	deferred *string
	lastErr  error
}

// NewEditor creates an editor over an already loaded tree
func NewEditor(userID, articleID string, tree *content.Tree, persister Persister, logger interfaces.Logger) *Editor {
	if tree == nil {
		tree = content.New()
	}
	return &Editor{
		userID:    userID,
		articleID: articleID,
		tree:      tree,
		persister: persister,
		logger:    logger,
	}
}

// ArticleID returns the id of the edited article
func (e *Editor) ArticleID() string { return e.articleID }

// UserID returns the owner of the edited article
func (e *Editor) UserID() string { return e.userID }

// Resolve resolves a selection against the current tree
func (e *Editor) Resolve(rng Range) (*Anchor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Resolve(e.tree, rng)
}

// ResolveText resolves a selection given as rune offsets into the article text
func (e *Editor) ResolveText(start, end int) (*Anchor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rng, err := RangeFromTextOffsets(e.tree, start, end)
	if err != nil {
		return nil, err
	}
	return Resolve(e.tree, rng)
}

// Create highlights the anchored selection under a new id
func (e *Editor) Create(anchor *Anchor, color domain.Color, note string) (domain.HighlightRecord, error) {
	m := content.Marker{HighlightID: NewID(), Color: color, Note: strings.TrimSpace(note)}
	var rec domain.HighlightRecord
	err := e.mutate(func(t *content.Tree) error {
		if err := Apply(t, anchor, m); err != nil {
			return err
		}
		rec, _ = Find(t, m.HighlightID)
		return nil
	})
	if err != nil && !errors.IsPersistence(err) {
		return domain.HighlightRecord{}, err
	}
	e.logger.Info("Highlight created", map[string]interface{}{
		"article_id":   e.articleID,
		"highlight_id": rec.ID,
		"color":        string(rec.Color),
	})
	return rec, err
}

// Delete removes every fragment of a highlight
func (e *Editor) Delete(id string) error {
	return e.mutate(func(t *content.Tree) error {
		return Delete(t, id)
	})
}

// UpdateNote sets the note of a highlight. A blank note removes it.
func (e *Editor) UpdateNote(id, note string) (domain.HighlightRecord, error) {
	return e.update(id, func(t *content.Tree) error { return SetNote(t, id, note) })
}

// UpdateColor sets the color of a highlight
func (e *Editor) UpdateColor(id string, color domain.Color) (domain.HighlightRecord, error) {
	return e.update(id, func(t *content.Tree) error { return SetColor(t, id, color) })
}

// Update sets the color and/or note of a highlight in one mutation and one
// write. Nil fields are left as they are.
func (e *Editor) Update(id string, color *domain.Color, note *string) (domain.HighlightRecord, error) {
	return e.update(id, func(t *content.Tree) error {
		if color != nil {
			if err := SetColor(t, id, *color); err != nil {
				return err
			}
		}
		if note != nil {
			return SetNote(t, id, *note)
		}
		return nil
	})
}

func (e *Editor) update(id string, fn func(*content.Tree) error) (domain.HighlightRecord, error) {
	var rec domain.HighlightRecord
	err := e.mutate(func(t *content.Tree) error {
		if err := fn(t); err != nil {
			return err
		}
		rec, _ = Find(t, id)
		return nil
	})
	if err != nil && !errors.IsPersistence(err) {
		return domain.HighlightRecord{}, err
	}
	return rec, err
}

// mutate applies fn to a clone and swaps it in, then queues a write. A
// PersistenceError means the change is applied locally but could not be queued.
func (e *Editor) mutate(fn func(*content.Tree) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.tree.Clone()
	if err := fn(next); err != nil {
		return err
	}
	html, records, err := Serialize(next)
	if err != nil {
		return err
	}
	e.tree = next
	return e.persistLocked(html, records)
}

// Snapshot serializes the current tree. Content and records come from the same tree.
func (e *Editor) Snapshot() (string, []domain.HighlightRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Serialize(e.tree)
}

// Records returns the highlight records of the current tree
func (e *Editor) Records() []domain.HighlightRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Records(e.tree)
}

// Text returns the plain text of the article
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.TextContent(e.tree.Root())
}

// Version returns the version of the current tree
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Version()
}

// Pending reports how many writes are still in flight
func (e *Editor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inFlight
}

// LastError returns the failure of the most recent write, if any. The next
// write carries the full content again, so a later success clears it.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Flush waits until every queued write finished and returns the last persistence failure
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	if idle != nil {
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return e.LastError()
}

// ApplyExternal offers content pushed from the store. It is deferred while
// local writes are in flight and ignored when it echoes one of our own writes.
// It reports whether the content replaced the current tree.
func (e *Editor) ApplyExternal(stored string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.inFlight > 0 {
		e.deferred = &stored
		e.logger.Debug("Deferred external content update", map[string]interface{}{
			"article_id": e.articleID,
			"pending":    e.inFlight,
		})
		return false, nil
	}
	return e.adoptLocked(stored)
}

func (e *Editor) adoptLocked(stored string) (bool, error) {
	if e.isOwnWrite(stored) {
		return false, nil
	}
	if current, err := content.Render(e.tree); err == nil && current == stored {
		return false, nil
	}
	t, err := Deserialize(stored)
	if err != nil {
		e.logger.Error("Ignoring corrupt external content", map[string]interface{}{
			"article_id": e.articleID,
			"error":      err.Error(),
		})
		return false, err
	}
	NormalizeAll(t)
	e.tree = t
	e.logger.Info("Adopted external content update", map[string]interface{}{
		"article_id": e.articleID,
	})
	return true, nil
}

func (e *Editor) isOwnWrite(stored string) bool {
	for _, w := range e.written {
		if w == stored {
			return true
		}
	}
	return false
}

// persistLocked queues a write of the current content. Local state never
// waits on the store. It returns a PersistenceError when the write cannot be queued.
func (e *Editor) persistLocked(html string, records []domain.HighlightRecord) error {
	e.written = append(e.written, html)
	if len(e.written) > recentWrites {
		e.written = e.written[len(e.written)-recentWrites:]
	}
	if e.persister == nil {
		return nil
	}

	if e.inFlight == 0 {
		e.idle = make(chan struct{})
	}
	e.inFlight++

	err := e.persister.Submit(&workers.PersistJob{
		UserID:     e.userID,
		ArticleID:  e.articleID,
		Content:    html,
		Highlights: records,
		Done: func(err error) {
			// never block the worker on the editor lock
			go e.persisted(err)
		},
	})
	if err != nil {
		e.logger.Error("Failed to queue article write", map[string]interface{}{
			"article_id": e.articleID,
			"error":      err.Error(),
		})
		perr := &errors.PersistenceError{ArticleID: e.articleID, Err: err}
		e.finishLocked(perr)
		return perr
	}
	return nil
}

// persisted is called by the persist worker when a write finished
func (e *Editor) persisted(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishLocked(err)
}

func (e *Editor) finishLocked(err error) {
	// the latest write decides
	e.lastErr = err
	e.inFlight--
	if e.inFlight > 0 {
		return
	}
	close(e.idle)
	e.idle = nil

	if e.deferred != nil {
		stored := *e.deferred
		e.deferred = nil
		_, _ = e.adoptLocked(stored)
	}
}

// Persist queues a write of the current content and records
func (e *Editor) Persist() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	html, records, err := Serialize(e.tree)
	if err != nil {
		return err
	}
	return e.persistLocked(html, records)
}
