// ABOUTME: Response DTOs for article and highlight API endpoints
// ABOUTME: List responses leave out article content to keep payloads small

package responses

import "time"

// HighlightResponse is one logical highlight
type HighlightResponse struct {
	ID    string `json:"id" doc:"Highlight id"`
	Text  string `json:"text" doc:"Highlighted text"`
	Color string `json:"color" doc:"Highlight color"`
	Note  string `json:"note,omitempty" doc:"Note attached to the highlight"`
}

// ArticleSummaryResponse is an article without its content
type ArticleSummaryResponse struct {
	ID             string    `json:"id" doc:"Article id"`
	URL            string    `json:"url" doc:"Original page URL"`
	Title          string    `json:"title" doc:"Article title"`
	Tags           []string  `json:"tags" doc:"Tags"`
	IsFavorite     bool      `json:"isFavorite" doc:"Marked as favorite"`
	IsArchived     bool      `json:"isArchived" doc:"Archived"`
	ReadingTime    int       `json:"readingTime" doc:"Estimated reading time in minutes"`
	HighlightCount int       `json:"highlightCount" doc:"Number of highlights"`
	CreatedAt      time.Time `json:"createdAt" doc:"When the article was saved"`
}

// ArticleResponse is a full article
type ArticleResponse struct {
	ArticleSummaryResponse
	Content    string              `json:"content" doc:"Sanitized HTML with highlight markers"`
	Highlights []HighlightResponse `json:"highlights" doc:"Highlights in document order"`

	PersistError string `json:"persistError,omitempty" doc:"Set when the latest highlight change could not be saved"`
}

// ArticleListResponse lists articles newest first
type ArticleListResponse struct {
	Articles []ArticleSummaryResponse `json:"articles" doc:"Articles, newest first"`
	Total    int                      `json:"total" doc:"Number of articles"`
}

// HighlightListResponse lists highlights in document order
type HighlightListResponse struct {
	Highlights []HighlightResponse `json:"highlights" doc:"Highlights in document order"`
}
