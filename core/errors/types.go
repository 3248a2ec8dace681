// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for better error handling and API responses

package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// EmptySelectionError is returned when a selection holds no highlightable text.
// Callers treat it as a no-op.
type EmptySelectionError struct {
	Reason string
}

// Error implements the error interface
func (e *EmptySelectionError) Error() string {
	if e.Reason == "" {
		return "empty selection"
	}
	return "empty selection: " + e.Reason
}

// AnchorStaleError is returned when the content a selection was resolved
// against changed before the highlight could be committed
type AnchorStaleError struct {
	Reason string
}

// Error implements the error interface
func (e *AnchorStaleError) Error() string {
	return "selection anchor is stale: " + e.Reason
}

// ContentCorruptError is returned when stored article content cannot be parsed
type ContentCorruptError struct {
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ContentCorruptError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt content: %s: %v", e.Reason, e.Err)
	}
	return "corrupt content: " + e.Reason
}

// Unwrap returns the underlying parse error
func (e *ContentCorruptError) Unwrap() error {
	return e.Err
}

// PersistenceError is returned when a write to the article store fails.
// The in-memory content is unaffected.
type PersistenceError struct {
	ArticleID string
	Err       error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist article %s: %v", e.ArticleID, e.Err)
}

// Unwrap returns the store error
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsEmptySelection checks if an error is an EmptySelectionError
func IsEmptySelection(err error) bool {
	var selErr *EmptySelectionError
	return errors.As(err, &selErr)
}

// IsAnchorStale checks if an error is an AnchorStaleError
func IsAnchorStale(err error) bool {
	var staleErr *AnchorStaleError
	return errors.As(err, &staleErr)
}

// IsContentCorrupt checks if an error is a ContentCorruptError
func IsContentCorrupt(err error) bool {
	var corruptErr *ContentCorruptError
	return errors.As(err, &corruptErr)
}

// IsPersistence checks if an error is a PersistenceError
func IsPersistence(err error) bool {
	var persistErr *PersistenceError
	return errors.As(err, &persistErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
