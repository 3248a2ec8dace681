// ABOUTME: Reader handler for the Huma API
// ABOUTME: Previews the readable content of pages before they are saved

package handlers

import (
	"context"
	"net/http"
	"strings"

	"highlights-app-api/api/dto/requests"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
)

// ReaderHandler handles reader view extraction requests
type ReaderHandler struct {
	readerService interfaces.ReaderService
}

// NewReaderHandler creates a new reader handler
func NewReaderHandler(readerService interfaces.ReaderService) *ReaderHandler {
	return &ReaderHandler{
		readerService: readerService,
	}
}

// RegisterRoutes registers all reader-related routes
func (h *ReaderHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getReaderView",
		Method:      http.MethodPost,
		Path:        "/getreaderview",
		Summary:     "Extract reader view from URLs",
		Description: "Extracts sanitized article content from web pages. Failures are reported per URL.",
		Tags:        []string{"Reader"},
	}, h.GetReaderView)
}

// GetReaderViewInput defines the input for the GetReaderView operation
type GetReaderViewInput struct {
	Body requests.ReaderViewRequest
}

// GetReaderViewOutput defines the output for the GetReaderView operation
type GetReaderViewOutput struct {
	Body []domain.ReaderView
}

// GetReaderView extracts one reader view per requested URL, in request order
func (h *ReaderHandler) GetReaderView(ctx context.Context, input *GetReaderViewInput) (*GetReaderViewOutput, error) {
	urls := make([]string, 0, len(input.Body.URLs))
	for _, u := range input.Body.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, huma.Error400BadRequest("No URLs provided")
	}

	return &GetReaderViewOutput{
		Body: h.readerService.ExtractReaderViews(ctx, urls),
	}, nil
}
