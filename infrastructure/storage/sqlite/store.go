// ABOUTME: SQLite-backed ArticleStore on mattn/go-sqlite3
// ABOUTME: Highlights and tags are stored as JSON columns next to the article content

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS articles (
		user_id      TEXT NOT NULL,
		id           TEXT NOT NULL,
		url          TEXT NOT NULL,
		title        TEXT NOT NULL,
		content      TEXT NOT NULL,
		highlights   TEXT NOT NULL DEFAULT '[]',
		tags         TEXT NOT NULL DEFAULT '[]',
		is_favorite  INTEGER NOT NULL DEFAULT 0,
		is_archived  INTEGER NOT NULL DEFAULT 0,
		reading_time INTEGER NOT NULL DEFAULT 0,
		created_at   INTEGER NOT NULL,
		PRIMARY KEY (user_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_articles_user_created ON articles(user_id, created_at DESC);
`

const selectColumns = `id, user_id, url, title, content, highlights, tags, is_favorite, is_archived, reading_time, created_at`

// Store implements interfaces.ArticleStore on a SQLite database file
type Store struct {
	db       *sql.DB
	filePath string
}

// NewStore opens (or creates) the database at filePath
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		filePath = "highlights.db"
	}

	db, err := sql.Open("sqlite3", filePath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, filePath: filePath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func notFound(id string) error {
	return &errors.NotFoundError{Resource: "article", ID: id}
}

func encodeJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Create persists a new article
func (s *Store) Create(ctx context.Context, article *domain.Article) error {
	if article.UserID == "" {
		return &errors.ValidationError{Field: "userId", Message: "user id cannot be empty"}
	}
	if article.ID == "" {
		article.ID = uuid.New().String()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now().UTC()
	}
	if article.Highlights == nil {
		article.Highlights = []domain.HighlightRecord{}
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}

	highlights, err := encodeJSON(article.Highlights)
	if err != nil {
		return fmt.Errorf("failed to encode highlights: %w", err)
	}
	tags, err := encodeJSON(article.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		article.ID, article.UserID, article.URL, article.Title, article.Content,
		highlights, tags, boolToInt(article.IsFavorite), boolToInt(article.IsArchived),
		article.ReadingTime, article.CreatedAt.UnixNano(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if stderrors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return &errors.ValidationError{Field: "id", Message: "article already exists"}
		}
		return fmt.Errorf("failed to insert article: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*domain.Article, error) {
	var (
		a                  domain.Article
		highlights, tags   string
		favorite, archived int
		createdAt          int64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.URL, &a.Title, &a.Content,
		&highlights, &tags, &favorite, &archived, &a.ReadingTime, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(highlights), &a.Highlights); err != nil {
		return nil, fmt.Errorf("failed to decode highlights of article %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &a.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of article %s: %w", a.ID, err)
	}
	if a.Highlights == nil {
		a.Highlights = []domain.HighlightRecord{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	a.IsFavorite = favorite != 0
	a.IsArchived = archived != 0
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	return &a, nil
}

// Get retrieves an article by ID
func (s *Store) Get(ctx context.Context, userID, id string) (*domain.Article, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM articles WHERE user_id = ? AND id = ?`, userID, id)

	a, err := scanArticle(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return a, nil
}

// List returns every article of the user, newest first
func (s *Store) List(ctx context.Context, userID string) ([]*domain.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM articles WHERE user_id = ? ORDER BY created_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := []*domain.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// Update replaces the mutable fields of an existing article. Content and
// highlights only change through UpdateContent.
func (s *Store) Update(ctx context.Context, article *domain.Article) error {
	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := encodeJSON(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, tags = ?, is_favorite = ?, is_archived = ?, reading_time = ?
		WHERE user_id = ? AND id = ?`,
		article.Title, encoded, boolToInt(article.IsFavorite), boolToInt(article.IsArchived),
		article.ReadingTime, article.UserID, article.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update article: %w", err)
	}
	return requireRow(res, article.ID)
}

// UpdateContent writes content and highlight records in one statement
func (s *Store) UpdateContent(ctx context.Context, userID, id, content string, highlights []domain.HighlightRecord) error {
	if highlights == nil {
		highlights = []domain.HighlightRecord{}
	}
	encoded, err := encodeJSON(highlights)
	if err != nil {
		return fmt.Errorf("failed to encode highlights: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE articles SET content = ?, highlights = ? WHERE user_id = ? AND id = ?`,
		content, encoded, userID, id)
	if err != nil {
		return fmt.Errorf("failed to update article content: %w", err)
	}
	return requireRow(res, id)
}

// Delete removes an article
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM articles WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}
