// Package domain defines domain-specific errors.
// These errors represent playback failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrNotAttached is returned when a media command needs an element and none is bound.
	ErrNotAttached = errors.New("media element not attached")

	// ErrNoTrackLoaded is returned when an operation needs a current track.
	ErrNoTrackLoaded = errors.New("no track loaded")

	// ErrPlaybackFailed is returned when playback cannot be started.
	ErrPlaybackFailed = errors.New("playback failed")

	// ErrSourceReplaced is returned to a pending play when a newer source was loaded.
	ErrSourceReplaced = errors.New("media source replaced")

	// ErrNoSource is returned when play is requested before any source was set.
	ErrNoSource = errors.New("no media source set")

	// ErrUnsupportedFormat is returned when an audio format cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrSourceTooLarge is returned when a media source exceeds the size limit.
	ErrSourceTooLarge = errors.New("media source too large")

	// ErrInvalidIndex is returned when a track list index is out of bounds.
	ErrInvalidIndex = errors.New("invalid track index")

	// ErrFileNotFound is returned when a local audio file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrClosed is returned by components used after Close.
	ErrClosed = errors.New("component closed")
)

// MediaError represents an error from a media element.
// This wraps low-level audio failures with the operation and source involved.
type MediaError struct {
	Op     string // Operation that failed (e.g., "load", "play", "seek")
	Source string // Media source (if applicable)
	Err    error  // Underlying error
}

// Error implements the error interface.
func (e *MediaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("media %s failed for '%s': %v", e.Op, e.Source, e.Err)
	}
	return fmt.Sprintf("media %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(op, source string, err error) *MediaError {
	return &MediaError{
		Op:     op,
		Source: source,
		Err:    err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ContentError represents a failed call to the remote content API.
type ContentError struct {
	Op         string // Operation that failed (e.g., "songs", "artist")
	StatusCode int    // HTTP status code (0 if the request never completed)
	Err        error  // Underlying error
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("content %s failed: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("content %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContentError) Unwrap() error {
	return e.Err
}

// NewContentError creates a new ContentError.
func NewContentError(op string, statusCode int, err error) *ContentError {
	return &ContentError{
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}
