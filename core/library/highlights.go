// ABOUTME: Highlight operations of the library service and Markdown export
// ABOUTME: Every highlight change goes through the article's editor in the workspace

package library

import (
	"context"
	"fmt"
	"strings"

	"highlights-app-api/core/domain"
	"highlights-app-api/core/errors"
	"highlights-app-api/core/reader"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

func parseColor(name string) (domain.Color, error) {
	if strings.TrimSpace(name) == "" {
		return domain.ColorYellow, nil
	}
	c, ok := domain.ParseColor(name)
	if !ok {
		return "", &errors.ValidationError{Field: "color", Message: "unsupported color " + name}
	}
	return c, nil
}

// Highlights returns the highlight records of an article in document order
func (s *Service) Highlights(ctx context.Context, userID, articleID string) ([]domain.HighlightRecord, error) {
	ed, err := s.workspace.Open(ctx, userID, articleID)
	if err != nil {
		return nil, err
	}
	return ed.Records(), nil
}

// CreateHighlight highlights the article text between rune offsets start and
// end. An empty color means yellow.
func (s *Service) CreateHighlight(ctx context.Context, userID, articleID string, start, end int, color, note string) (domain.HighlightRecord, error) {
	c, err := parseColor(color)
	if err != nil {
		return domain.HighlightRecord{}, err
	}

	ed, err := s.workspace.Open(ctx, userID, articleID)
	if err != nil {
		return domain.HighlightRecord{}, err
	}
	anchor, err := ed.ResolveText(start, end)
	if err != nil {
		return domain.HighlightRecord{}, err
	}
	return ed.Create(anchor, c, note)
}

// UpdateHighlight changes the color and/or note of a highlight. A blank note
// removes it.
func (s *Service) UpdateHighlight(ctx context.Context, userID, articleID, highlightID string, upd domain.HighlightUpdate) (domain.HighlightRecord, error) {
	if upd.Color == nil && upd.Note == nil {
		return domain.HighlightRecord{}, &errors.ValidationError{Field: "body", Message: "color or note is required"}
	}

	var color *domain.Color
	if upd.Color != nil {
		c, ok := domain.ParseColor(*upd.Color)
		if !ok {
			return domain.HighlightRecord{}, &errors.ValidationError{Field: "color", Message: "unsupported color " + *upd.Color}
		}
		color = &c
	}

	ed, err := s.workspace.Open(ctx, userID, articleID)
	if err != nil {
		return domain.HighlightRecord{}, err
	}
	return ed.Update(highlightID, color, upd.Note)
}

// DeleteHighlight removes every fragment of a highlight
func (s *Service) DeleteHighlight(ctx context.Context, userID, articleID, highlightID string) error {
	ed, err := s.workspace.Open(ctx, userID, articleID)
	if err != nil {
		return err
	}
	if err := ed.Delete(highlightID); err != nil {
		return err
	}
	s.logger.Info("Highlight deleted", map[string]interface{}{
		"article_id":   articleID,
		"highlight_id": highlightID,
	})
	return nil
}

var markRule = md.Rule{
	Filter: []string{"mark"},
	Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
		if strings.TrimSpace(content) == "" {
			return md.String(content)
		}
		return md.String("==" + content + "==")
	},
}

// ExportMarkdown renders an article as Markdown with highlights marked as
// ==text== and a list of highlights and notes appended
func (s *Service) ExportMarkdown(ctx context.Context, userID, articleID string) (string, error) {
	article, err := s.Get(ctx, userID, articleID)
	if err != nil {
		return "", err
	}

	body, err := reader.ToMarkdown(article.Content, []md.Rule{markRule})
	if err != nil {
		return "", errors.WrapError(err, "failed to convert article to markdown")
	}

	var out strings.Builder
	out.WriteString(reader.BuildMarkdownWithMetadata(article.Title, "", article.URL, body))

	if len(article.Highlights) > 0 {
		out.WriteString("\n\n## Highlights\n")
		for _, h := range article.Highlights {
			fmt.Fprintf(&out, "\n- %s", strings.Join(strings.Fields(h.Text), " "))
			if h.Note != "" {
				fmt.Fprintf(&out, "\n  - Note: %s", h.Note)
			}
		}
		out.WriteString("\n")
	}
	return out.String(), nil
}
