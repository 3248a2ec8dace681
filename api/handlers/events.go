// ABOUTME: Server-sent events stream of a user's article list
// ABOUTME: Pushes the full list once on connect and again after every change

package handlers

import (
	"context"
	"net/http"

	"highlights-app-api/api/dto/mappers"
	"highlights-app-api/api/dto/responses"
	"highlights-app-api/core/domain"
	"highlights-app-api/core/interfaces"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
)

// EventsHandler streams article changes
type EventsHandler struct {
	library interfaces.LibraryService
	logger  interfaces.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(library interfaces.LibraryService, logger interfaces.Logger) *EventsHandler {
	return &EventsHandler{library: library, logger: logger}
}

// RegisterRoutes registers the event stream
func (h *EventsHandler) RegisterRoutes(api huma.API) {
	sse.Register(api, huma.Operation{
		OperationID: "articleEvents",
		Method:      http.MethodGet,
		Path:        "/articles/events",
		Summary:     "Stream article changes",
		Description: "Sends the user's full article list on connect and after every change",
		Tags:        []string{"Articles"},
	}, map[string]any{
		"articles": responses.ArticleListResponse{},
	}, h.Stream)
}

// EventsInput defines the input for the event stream
type EventsInput struct {
	UserInput
}

// Stream sends article lists until the client goes away
func (h *EventsHandler) Stream(ctx context.Context, input *EventsInput, send sse.Sender) {
	// only the latest list matters to a slow client
	updates := make(chan []*domain.Article, 1)
	cancel, err := h.library.Subscribe(ctx, input.User(), func(articles []*domain.Article) {
		for {
			select {
			case updates <- articles:
				return
			default:
				select {
				case <-updates:
				default:
				}
			}
		}
	})
	if err != nil {
		h.logger.Warn("Failed to subscribe to article changes", map[string]interface{}{
			"user_id": input.User(),
			"error":   err.Error(),
		})
		return
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case articles := <-updates:
			if err := send.Data(*mappers.ToArticleListResponse(articles)); err != nil {
				return
			}
		}
	}
}
