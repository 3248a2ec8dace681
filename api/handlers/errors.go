// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to appropriate HTTP responses

package handlers

import (
	stderrors "errors"

	"highlights-app-api/core/errors"

	"github.com/danielgtaylor/huma/v2"
)

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case errors.IsValidation(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsEmptySelection(err):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.IsAnchorStale(err):
		return huma.Error409Conflict(err.Error())
	case errors.IsContentCorrupt(err):
		return huma.Error500InternalServerError("Stored article content is corrupt", err)
	case errors.IsPersistence(err):
		return huma.Error503ServiceUnavailable("Article storage unavailable", err)
	}

	var apiErr *errors.ExternalAPIError
	if stderrors.As(err, &apiErr) {
		// Map external API status codes to our API status codes
		switch {
		case apiErr.StatusCode >= 500:
			return huma.Error503ServiceUnavailable("External service error", err)
		case apiErr.StatusCode == 429:
			return huma.Error429TooManyRequests("Rate limited by external service")
		case apiErr.StatusCode >= 400:
			return huma.Error400BadRequest("External service request error", err)
		case apiErr.StatusCode == 0:
			return huma.Error503ServiceUnavailable("External service unreachable", err)
		default:
			return huma.Error500InternalServerError("Unexpected external service response", err)
		}
	}

	// Default to internal server error for unknown errors
	return huma.Error500InternalServerError("Internal server error", err)
}
