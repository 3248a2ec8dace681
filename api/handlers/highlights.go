// ABOUTME: Highlight handlers for the Huma API
// ABOUTME: Create, list, update and delete highlights inside a saved article

package handlers

import (
	"context"
	"net/http"

	"highlights-app-api/api/dto/mappers"
	"highlights-app-api/api/dto/requests"
	"highlights-app-api/api/dto/responses"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
)

// HighlightHandler handles highlight requests
type HighlightHandler struct {
	library interfaces.LibraryService
}

// NewHighlightHandler creates a new highlight handler
func NewHighlightHandler(library interfaces.LibraryService) *HighlightHandler {
	return &HighlightHandler{library: library}
}

// RegisterRoutes registers all highlight routes
func (h *HighlightHandler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listHighlights",
		Method:      http.MethodGet,
		Path:        "/articles/{id}/highlights",
		Summary:     "List highlights",
		Description: "Returns the article's highlights in document order",
		Tags:        []string{"Highlights"},
	}, h.ListHighlights)

	huma.Register(api, huma.Operation{
		OperationID:   "createHighlight",
		Method:        http.MethodPost,
		Path:          "/articles/{id}/highlights",
		Summary:       "Create a highlight",
		Description:   "Highlights the article text between two character offsets. Selections holding only whitespace are rejected with 422.",
		Tags:          []string{"Highlights"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateHighlight)

	huma.Register(api, huma.Operation{
		OperationID: "updateHighlight",
		Method:      http.MethodPatch,
		Path:        "/articles/{id}/highlights/{hid}",
		Summary:     "Update a highlight",
		Description: "Changes the color and/or note of every fragment of a highlight",
		Tags:        []string{"Highlights"},
	}, h.UpdateHighlight)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteHighlight",
		Method:        http.MethodDelete,
		Path:          "/articles/{id}/highlights/{hid}",
		Summary:       "Delete a highlight",
		Tags:          []string{"Highlights"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteHighlight)
}

// HighlightOutput returns one highlight
type HighlightOutput struct {
	Body responses.HighlightResponse
}

// ListHighlightsOutput defines the output for the ListHighlights operation
type ListHighlightsOutput struct {
	Body responses.HighlightListResponse
}

// ListHighlights lists the highlights of an article
func (h *HighlightHandler) ListHighlights(ctx context.Context, input *ArticleIDInput) (*ListHighlightsOutput, error) {
	records, err := h.library.Highlights(ctx, input.User(), input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ListHighlightsOutput{Body: responses.HighlightListResponse{
		Highlights: mappers.ToHighlightResponses(records),
	}}, nil
}

// CreateHighlightInput defines the input for the CreateHighlight operation
type CreateHighlightInput struct {
	UserInput
	ID   string `path:"id" doc:"Article id"`
	Body requests.CreateHighlightRequest
}

// CreateHighlight highlights a text selection
func (h *HighlightHandler) CreateHighlight(ctx context.Context, input *CreateHighlightInput) (*HighlightOutput, error) {
	rec, err := h.library.CreateHighlight(ctx, input.User(), input.ID,
		input.Body.Start, input.Body.End, input.Body.Color, input.Body.Note)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &HighlightOutput{Body: mappers.ToHighlightResponse(rec)}, nil
}

// HighlightIDInput addresses one highlight
type HighlightIDInput struct {
	UserInput
	ID          string `path:"id" doc:"Article id"`
	HighlightID string `path:"hid" doc:"Highlight id"`
}

// UpdateHighlightInput defines the input for the UpdateHighlight operation
type UpdateHighlightInput struct {
	HighlightIDInput
	Body requests.UpdateHighlightRequest
}

// UpdateHighlight changes a highlight's color and/or note
func (h *HighlightHandler) UpdateHighlight(ctx context.Context, input *UpdateHighlightInput) (*HighlightOutput, error) {
	rec, err := h.library.UpdateHighlight(ctx, input.User(), input.ID, input.HighlightID, domain.HighlightUpdate{
		Color: input.Body.Color,
		Note:  input.Body.Note,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	return &HighlightOutput{Body: mappers.ToHighlightResponse(rec)}, nil
}

// DeleteHighlight removes a highlight
func (h *HighlightHandler) DeleteHighlight(ctx context.Context, input *HighlightIDInput) (*struct{}, error) {
	if err := h.library.DeleteHighlight(ctx, input.User(), input.ID, input.HighlightID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}
