// ABOUTME: Article handlers for the Huma API
// ABOUTME: Save, list, tag, toggle, delete and export a user's saved articles

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"highlights-app-api/api/dto/mappers"
	"highlights-app-api/api/dto/requests"
	"highlights-app-api/api/dto/responses"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/interfaces"
	"highlights-app-api/pkg/featureflags"

	"github.com/danielgtaylor/huma/v2"
)

// ArticleHandler handles article requests
type ArticleHandler struct {
	library interfaces.LibraryService
	flags   featureflags.Manager
}

// NewArticleHandler creates a new article handler. flags may be nil, which
// enables every optional endpoint.
func NewArticleHandler(library interfaces.LibraryService, flags featureflags.Manager) *ArticleHandler {
	return &ArticleHandler{library: library, flags: flags}
}

// RegisterRoutes registers all article routes
func (h *ArticleHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "saveArticle",
		Method:        http.MethodPost,
		Path:          "/articles",
		Summary:       "Save an article",
		Description:   "Extracts the readable content of a page and saves it without highlights",
		Tags:          []string{"Articles"},
		DefaultStatus: http.StatusCreated,
	}, h.SaveArticle)

	huma.Register(api, huma.Operation{
		OperationID: "listArticles",
		Method:      http.MethodGet,
		Path:        "/articles",
		Summary:     "List articles",
		Description: "Lists the user's articles newest first, optionally filtered",
		Tags:        []string{"Articles"},
	}, h.ListArticles)

	huma.Register(api, huma.Operation{
		OperationID: "randomArticle",
		Method:      http.MethodGet,
		Path:        "/articles/random",
		Summary:     "Pick a random article",
		Description: "Returns one of the user's non-archived articles",
		Tags:        []string{"Articles"},
	}, h.RandomArticle)

	huma.Register(api, huma.Operation{
		OperationID: "getArticle",
		Method:      http.MethodGet,
		Path:        "/articles/{id}",
		Summary:     "Get an article",
		Description: "Returns the article content with its highlights",
		Tags:        []string{"Articles"},
	}, h.GetArticle)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteArticle",
		Method:        http.MethodDelete,
		Path:          "/articles/{id}",
		Summary:       "Delete an article",
		Tags:          []string{"Articles"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteArticle)

	huma.Register(api, huma.Operation{
		OperationID: "addTag",
		Method:      http.MethodPost,
		Path:        "/articles/{id}/tags",
		Summary:     "Tag an article",
		Tags:        []string{"Articles"},
	}, h.AddTag)

	huma.Register(api, huma.Operation{
		OperationID: "removeTag",
		Method:      http.MethodDelete,
		Path:        "/articles/{id}/tags/{tag}",
		Summary:     "Remove a tag",
		Tags:        []string{"Articles"},
	}, h.RemoveTag)

	huma.Register(api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/articles/{id}/favorite",
		Summary:     "Toggle favorite",
		Tags:        []string{"Articles"},
	}, h.ToggleFavorite)

	huma.Register(api, huma.Operation{
		OperationID: "toggleArchive",
		Method:      http.MethodPost,
		Path:        "/articles/{id}/archive",
		Summary:     "Toggle archived",
		Tags:        []string{"Articles"},
	}, h.ToggleArchive)

	huma.Register(api, huma.Operation{
		OperationID: "exportArticle",
		Method:      http.MethodGet,
		Path:        "/articles/{id}/export",
		Summary:     "Export an article as Markdown",
		Description: "Renders highlights as ==text== and appends every highlight with its note",
		Tags:        []string{"Articles"},
	}, h.ExportArticle)
}

// SaveArticleInput defines the input for the SaveArticle operation
type SaveArticleInput struct {
	UserInput
	Body requests.SaveArticleRequest
}

// ArticleOutput returns one full article
type ArticleOutput struct {
	Body *responses.ArticleResponse
}

// ArticleSummaryOutput returns one article without content
type ArticleSummaryOutput struct {
	Body *responses.ArticleSummaryResponse
}

// SaveArticle extracts and saves a page
func (h *ArticleHandler) SaveArticle(ctx context.Context, input *SaveArticleInput) (*ArticleOutput, error) {
	article, err := h.library.SaveFromURL(ctx, input.User(), input.Body.URL)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleOutput{Body: mappers.ToArticleResponse(article)}, nil
}

// ListArticlesInput defines the input for the ListArticles operation
type ListArticlesInput struct {
	UserInput
	Tag      string `query:"tag" doc:"Only articles carrying this tag"`
	Archived string `query:"archived" enum:"true,false" doc:"Only archived (true) or active (false) articles"`
	Favorite string `query:"favorite" enum:"true,false" doc:"Only favorite (true) or other (false) articles"`
}

// ListArticlesOutput defines the output for the ListArticles operation
type ListArticlesOutput struct {
	Body *responses.ArticleListResponse
}

func optionalBool(name, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, huma.Error400BadRequest(name + " must be true or false")
	}
	return &b, nil
}

// ListArticles lists the user's articles
func (h *ArticleHandler) ListArticles(ctx context.Context, input *ListArticlesInput) (*ListArticlesOutput, error) {
	archived, err := optionalBool("archived", input.Archived)
	if err != nil {
		return nil, err
	}
	favorite, err := optionalBool("favorite", input.Favorite)
	if err != nil {
		return nil, err
	}

	articles, err := h.library.List(ctx, input.User(), domain.ArticleFilter{
		Tag:      input.Tag,
		Archived: archived,
		Favorite: favorite,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ListArticlesOutput{Body: mappers.ToArticleListResponse(articles)}, nil
}

// RandomArticleInput defines the input for the RandomArticle operation
type RandomArticleInput struct {
	UserInput
}

// RandomArticle picks a non-archived article
func (h *ArticleHandler) RandomArticle(ctx context.Context, input *RandomArticleInput) (*ArticleSummaryOutput, error) {
	article, err := h.library.Random(ctx, input.User())
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleSummaryOutput{Body: mappers.ToArticleSummaryResponse(article)}, nil
}

// ArticleIDInput addresses one article
type ArticleIDInput struct {
	UserInput
	ID string `path:"id" doc:"Article id"`
}

// GetArticle returns one article with its highlights
func (h *ArticleHandler) GetArticle(ctx context.Context, input *ArticleIDInput) (*ArticleOutput, error) {
	article, err := h.library.Get(ctx, input.User(), input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleOutput{Body: mappers.ToArticleResponse(article)}, nil
}

// DeleteArticle removes an article
func (h *ArticleHandler) DeleteArticle(ctx context.Context, input *ArticleIDInput) (*struct{}, error) {
	if err := h.library.Delete(ctx, input.User(), input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// AddTagInput defines the input for the AddTag operation
type AddTagInput struct {
	UserInput
	ID   string `path:"id" doc:"Article id"`
	Body requests.TagRequest
}

// AddTag adds a tag to an article
func (h *ArticleHandler) AddTag(ctx context.Context, input *AddTagInput) (*ArticleSummaryOutput, error) {
	article, err := h.library.AddTag(ctx, input.User(), input.ID, input.Body.Tag)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleSummaryOutput{Body: mappers.ToArticleSummaryResponse(article)}, nil
}

// RemoveTagInput defines the input for the RemoveTag operation
type RemoveTagInput struct {
	UserInput
	ID  string `path:"id" doc:"Article id"`
	Tag string `path:"tag" doc:"Tag to remove"`
}

// RemoveTag removes a tag from an article
func (h *ArticleHandler) RemoveTag(ctx context.Context, input *RemoveTagInput) (*ArticleSummaryOutput, error) {
	article, err := h.library.RemoveTag(ctx, input.User(), input.ID, input.Tag)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleSummaryOutput{Body: mappers.ToArticleSummaryResponse(article)}, nil
}

// ToggleFavorite flips the favorite flag
func (h *ArticleHandler) ToggleFavorite(ctx context.Context, input *ArticleIDInput) (*ArticleSummaryOutput, error) {
	article, err := h.library.ToggleFavorite(ctx, input.User(), input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleSummaryOutput{Body: mappers.ToArticleSummaryResponse(article)}, nil
}

// ToggleArchive flips the archived flag
func (h *ArticleHandler) ToggleArchive(ctx context.Context, input *ArticleIDInput) (*ArticleSummaryOutput, error) {
	article, err := h.library.ToggleArchive(ctx, input.User(), input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ArticleSummaryOutput{Body: mappers.ToArticleSummaryResponse(article)}, nil
}

// ExportArticleOutput carries the Markdown document
type ExportArticleOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

// ExportArticle renders an article as Markdown
func (h *ArticleHandler) ExportArticle(ctx context.Context, input *ArticleIDInput) (*ExportArticleOutput, error) {
	if h.flags != nil && !h.flags.IsEnabledForUser(ctx, featureflags.MarkdownExport, input.User()) {
		return nil, huma.Error404NotFound("Markdown export is disabled")
	}

	markdown, err := h.library.ExportMarkdown(ctx, input.User(), input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ExportArticleOutput{
		ContentType:        "text/markdown; charset=utf-8",
		ContentDisposition: `attachment; filename="` + input.ID + `.md"`,
		Body:               []byte(markdown),
	}, nil
}
