// ABOUTME: Mappers for converting between domain models and API DTOs
// ABOUTME: Provides clean separation between business logic and API layer

package mappers

import (
	"highlights-app-api/api/dto/responses"
	"highlights-app-api/core/domain"
)

// ToHighlightResponse converts a highlight record to its DTO
func ToHighlightResponse(rec domain.HighlightRecord) responses.HighlightResponse {
	return responses.HighlightResponse{
		ID:    rec.ID,
		Text:  rec.Text,
		Color: string(rec.Color),
		Note:  rec.Note,
	}
}

// ToHighlightResponses converts highlight records, keeping their order
func ToHighlightResponses(recs []domain.HighlightRecord) []responses.HighlightResponse {
	out := make([]responses.HighlightResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, ToHighlightResponse(rec))
	}
	return out
}

// ToArticleSummaryResponse converts a domain Article to a summary DTO
func ToArticleSummaryResponse(article *domain.Article) *responses.ArticleSummaryResponse {
	if article == nil {
		return nil
	}

	tags := article.Tags
	if tags == nil {
		tags = []string{}
	}

	return &responses.ArticleSummaryResponse{
		ID:             article.ID,
		URL:            article.URL,
		Title:          article.Title,
		Tags:           tags,
		IsFavorite:     article.IsFavorite,
		IsArchived:     article.IsArchived,
		ReadingTime:    article.ReadingTime,
		HighlightCount: len(article.Highlights),
		CreatedAt:      article.CreatedAt,
	}
}

// ToArticleResponse converts a domain Article to a full DTO
func ToArticleResponse(article *domain.Article) *responses.ArticleResponse {
	summary := ToArticleSummaryResponse(article)
	if summary == nil {
		return nil
	}

	return &responses.ArticleResponse{
		ArticleSummaryResponse: *summary,
		Content:                article.Content,
		Highlights:             ToHighlightResponses(article.Highlights),
		PersistError:           article.PersistError,
	}
}

// ToArticleListResponse converts multiple articles to a list DTO
func ToArticleListResponse(articles []*domain.Article) *responses.ArticleListResponse {
	list := &responses.ArticleListResponse{
		Articles: make([]responses.ArticleSummaryResponse, 0, len(articles)),
	}

	for _, article := range articles {
		if summary := ToArticleSummaryResponse(article); summary != nil {
			list.Articles = append(list.Articles, *summary)
		}
	}
	list.Total = len(list.Articles)

	return list
}
