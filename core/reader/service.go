// ABOUTME: Service layer implementation for reader view extraction
// ABOUTME: Fetches pages, extracts them with go-readability and sanitizes the result for highlighting

package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"highlights-app-api/core/interfaces"
	htmlutil "highlights-app-api/pkg/utils/html"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	maxPageBytes   = 10 << 20
	maxConcurrency = 8
	statusOK       = "ok"
	statusError    = "error"
)

// Options tunes a Service
type Options struct {
	// FetchTimeout bounds one page fetch and extraction
	FetchTimeout time.Duration

	// CacheTTL is how long successful extractions are cached
	CacheTTL time.Duration

	// CacheEnabled turns the extraction cache on
	CacheEnabled bool
}

// Service implements interfaces.ReaderService
type Service struct {
	http   interfaces.HTTPClient
	cache  interfaces.Cache
	logger interfaces.Logger
	opts   Options
	policy *bluemonday.Policy
	group  singleflight.Group
}

// NewService creates a reader service. deps.Cache may be nil.
func NewService(deps interfaces.Dependencies, opts Options) *Service {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Service{
		http:   deps.HTTPClient,
		cache:  deps.Cache,
		logger: deps.Logger,
		opts:   opts,
		policy: policy,
	}
}

func cacheKey(pageURL string) string {
	return "reader:" + pageURL
}

func validateURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &errors.ValidationError{Field: "url", Message: "must be an absolute http(s) URL"}
	}
	return parsed, nil
}

// ExtractArticle fetches pageURL and returns its sanitized reader view
func (s *Service) ExtractArticle(ctx context.Context, pageURL string) (*domain.ReaderView, error) {
	parsed, err := validateURL(pageURL)
	if err != nil {
		return nil, err
	}
	key := parsed.String()

	if view, ok := s.cached(ctx, key); ok {
		return view, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		view, err := s.fetchAndExtract(ctx, parsed)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, view)
		return view, nil
	})
	if err != nil {
		return nil, err
	}

	view := *v.(*domain.ReaderView)
	return &view, nil
}

// ExtractReaderViews extracts several pages concurrently. Failures are
// reported per entry through ReaderView.Status and Error.
func (s *Service) ExtractReaderViews(ctx context.Context, urls []string) []domain.ReaderView {
	results := make([]domain.ReaderView, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, u := range urls {
		g.Go(func() error {
			view, err := s.ExtractArticle(gctx, u)
			if err != nil {
				s.logger.Error("Failed to parse reader view", map[string]interface{}{
					"url":   u,
					"error": err.Error(),
				})
				results[i] = domain.ReaderView{URL: u, Status: statusError, Error: err.Error()}
				return nil
			}
			results[i] = *view
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (s *Service) cached(ctx context.Context, key string) (*domain.ReaderView, bool) {
	if !s.opts.CacheEnabled || s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, cacheKey(key))
	if err != nil {
		return nil, false
	}
	var view domain.ReaderView
	if err := json.Unmarshal(data, &view); err != nil {
		s.logger.Warn("Discarding undecodable reader cache entry", map[string]interface{}{
			"url":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return &view, true
}

func (s *Service) store(ctx context.Context, key string, view *domain.ReaderView) {
	if !s.opts.CacheEnabled || s.cache == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(key), data, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache reader view", map[string]interface{}{
			"url":   key,
			"error": err.Error(),
		})
	}
}

func (s *Service) fetchAndExtract(ctx context.Context, pageURL *url.URL) (*domain.ReaderView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	resp, err := s.http.Get(ctx, pageURL.String())
	if err != nil {
		return nil, &errors.ExternalAPIError{API: pageURL.Host, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body().Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &errors.ExternalAPIError{
			API:        pageURL.Host,
			StatusCode: resp.StatusCode(),
			Message:    "unexpected status fetching article",
		}
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body(), maxPageBytes), pageURL)
	if err != nil {
		return nil, errors.WrapError(err, "failed to extract article")
	}

	content, err := s.Sanitize(article.Content)
	if err != nil {
		return nil, err
	}
	text := htmlutil.StripHTML(content)
	length := htmlutil.TextLength(text)

	view := &domain.ReaderView{
		URL:         pageURL.String(),
		Title:       strings.TrimSpace(article.Title),
		Content:     content,
		TextContent: text,
		TextLength:  length,
		WordCount:   htmlutil.WordCount(text),
		ReadingTime: htmlutil.ReadingTime(length),
		SiteName:    article.SiteName,
		Image:       article.Image,
		Favicon:     article.Favicon,
		Status:      statusOK,
	}

	if content != "" {
		markdown, err := ToMarkdown(content, nil)
		if err != nil {
			s.logger.Debug("Failed to convert HTML to markdown", map[string]interface{}{
				"url":   view.URL,
				"error": err.Error(),
			})
		} else {
			view.Markdown = BuildMarkdownWithMetadata(view.Title, article.Byline, view.SiteName, markdown)
		}
	}

	return view, nil
}

// Sanitize strips unsafe markup and any highlight markers carried by a
// fetched page, so saved content starts without highlights
func (s *Service) Sanitize(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", errors.WrapError(err, "failed to parse article content")
	}
	doc.Find("mark[data-highlight-id]").Each(func(_ int, sel *goquery.Selection) {
		sel.ReplaceWithSelection(sel.Contents())
	})

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", errors.WrapError(err, "failed to render article content")
	}
	return strings.TrimSpace(s.policy.Sanitize(body)), nil
}

// ToMarkdown converts HTML to Markdown. rules extend the default conversion.
func ToMarkdown(content string, rules []md.Rule) (string, error) {
	converter := md.NewConverter("", true, nil)
	if len(rules) > 0 {
		converter.AddRules(rules...)
	}
	return converter.ConvertString(content)
}

// BuildMarkdownWithMetadata creates a markdown document with a title and metadata line
func BuildMarkdownWithMetadata(title, author, siteName, content string) string {
	var markdown strings.Builder

	if title != "" {
		markdown.WriteString("# ")
		markdown.WriteString(title)
		markdown.WriteString("\n\n")
	}

	var metadataItems []string
	if author != "" {
		metadataItems = append(metadataItems, fmt.Sprintf("**Author:** %s", author))
	}
	if siteName != "" {
		metadataItems = append(metadataItems, fmt.Sprintf("**Source:** %s", siteName))
	}
	if len(metadataItems) > 0 {
		markdown.WriteString(strings.Join(metadataItems, " | "))
		markdown.WriteString("\n\n---\n\n")
	}

	markdown.WriteString(CleanMarkdown(content))
	return markdown.String()
}

var (
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
	trailingSpaces  = regexp.MustCompile(`[ \t]+\n`)
	headingSpacing  = regexp.MustCompile(`\n(#{1,6} )`)
	headingTrailing = regexp.MustCompile(`(#{1,6} [^\n]+)\n([^\n])`)
)

// CleanMarkdown normalizes line endings and blank lines in converted markdown
func CleanMarkdown(markdown string) string {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	markdown = strings.ReplaceAll(markdown, "\r", "\n")

	markdown = trailingSpaces.ReplaceAllString(markdown, "\n")
	markdown = headingSpacing.ReplaceAllString(markdown, "\n\n$1")
	markdown = headingTrailing.ReplaceAllString(markdown, "$1\n\n$2")
	markdown = excessNewlines.ReplaceAllString(markdown, "\n\n")

	return strings.TrimSpace(markdown)
}
