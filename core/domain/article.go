// ABOUTME: Article domain model for saved web articles and their highlights
// ABOUTME: Provides highlight colors, highlight records and article filtering

package domain

import (
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Color is the display color of a highlight
type Color string

// Supported highlight colors
const (
	ColorYellow Color = "yellow"
	ColorPink   Color = "pink"
	ColorSky    Color = "sky"
	ColorGreen  Color = "green"
)

// Colors lists every supported highlight color
var Colors = []Color{ColorYellow, ColorPink, ColorSky, ColorGreen}

// ParseColor resolves a color name case-insensitively
func ParseColor(name string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	return c, c.Valid()
}

// Valid reports whether c is one of the supported colors
func (c Color) Valid() bool {
	switch c {
	case ColorYellow, ColorPink, ColorSky, ColorGreen:
		return true
	}
	return false
}

// HighlightRecord is the flat view of one logical highlight.
// It is always derived from article content, never edited directly.
type HighlightRecord struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Color Color  `json:"color"`
	Note  string `json:"note"`
}

// HighlightUpdate carries optional changes to a highlight. Nil fields are left as they are.
type HighlightUpdate struct {
	Color *string
	Note  *string
}

// Article is a saved web article
type Article struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Highlights  []HighlightRecord `json:"highlights"`
	Tags        []string          `json:"tags"`
	IsFavorite  bool              `json:"isFavorite"`
	IsArchived  bool              `json:"isArchived"`
	ReadingTime int               `json:"readingTime"`
	CreatedAt   time.Time         `json:"createdAt"`

	// PersistError describes the failed last write of locally edited
	// content. It is never stored.
	PersistError string `json:"-"`
}

// HasTag reports whether the article carries tag
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag adds tag if absent. Tags behave as a set.
func (a *Article) AddTag(tag string) bool {
	if a.HasTag(tag) {
		return false
	}
	a.Tags = append(a.Tags, tag)
	return true
}

// RemoveTag removes tag if present
func (a *Article) RemoveTag(tag string) bool {
	for i, t := range a.Tags {
		if t == tag {
			a.Tags = append(a.Tags[:i], a.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// ArticleFilter selects articles for listing.
// Nil pointer fields are not applied.
type ArticleFilter struct {
	Tag      string
	Archived *bool
	Favorite *bool
}

// Match reports whether a satisfies the filter
func (f ArticleFilter) Match(a *Article) bool {
	if f.Tag != "" && !a.HasTag(f.Tag) {
		return false
	}
	if f.Archived != nil && a.IsArchived != *f.Archived {
		return false
	}
	if f.Favorite != nil && a.IsFavorite != *f.Favorite {
		return false
	}
	return true
}

// SortNewestFirst orders articles by creation time, newest first
func SortNewestFirst(articles []Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
}

// NewArticle creates a new Article from extracted reader content
func NewArticle(userID string, view *ReaderView) (*Article, error) {
	if userID == "" {
		return nil, errors.New("user id cannot be empty")
	}
	if view == nil {
		return nil, errors.New("reader view cannot be nil")
	}

	parsedURL, err := url.Parse(view.URL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, errors.New("article URL must be valid")
	}

	title := strings.TrimSpace(view.Title)
	if title == "" {
		title = "Untitled Article"
	}

	return &Article{
		ID:          uuid.New().String(),
		UserID:      userID,
		URL:         view.URL,
		Title:       title,
		Content:     view.Content,
		Highlights:  []HighlightRecord{},
		Tags:        []string{},
		ReadingTime: view.ReadingTime,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
