package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrNoSource          = errors.New("no audio URL provided")
	ErrLoadFailed        = errors.New("track failed to load")
	ErrLoadTimeout       = errors.New("track load timed out")
	ErrLoadSuperseded    = errors.New("track load superseded by a newer load")
	ErrNoResource        = errors.New("no track loaded")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrAudioUnavailable  = errors.New("audio output not available in this build")
	ErrQueueEmpty        = errors.New("queue is empty")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrTrackNotFound     = errors.New("track not found")
	ErrPlaylistNotFound  = errors.New("playlist not found")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// BhajanError wraps an error with a user-friendly suggestion.
type BhajanError struct {
	Err        error
	Suggestion string
}

func (e *BhajanError) Error() string {
	return e.Err.Error()
}

func (e *BhajanError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &BhajanError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var bhajanErr *BhajanError
	if errors.As(err, &bhajanErr) && bhajanErr.Suggestion != "" {
		return bhajanErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	if errors.Is(err, ErrNoSource) {
		return "The track has no audio URL. Check the url field in your library file"
	}

	if errors.Is(err, ErrLoadTimeout) || strings.Contains(errStr, "timeout") {
		return "The media host is slow to respond. Raise audio.load_timeout or try again"
	}

	if errors.Is(err, ErrUnsupportedFormat) {
		return "Supported formats are mp3, wav, flac and ogg"
	}

	if errors.Is(err, ErrAudioUnavailable) {
		return "Rebuild with CGO_ENABLED=1 to enable audio output"
	}

	if errors.Is(err, ErrLoadFailed) {
		return "Check that the track URL is reachable, or enable audio.fallback for diagnostics"
	}

	if errors.Is(err, ErrPlaylistNotFound) || errors.Is(err, ErrTrackNotFound) {
		return "Run 'bhajan playlists' to see what your library contains"
	}

	if errors.Is(err, ErrQueueEmpty) {
		return "Load a playlist first"
	}

	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "no such host") {
		return "Check your internet connection and try again"
	}

	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) || strings.Contains(errStr, "config") {
		return "Run 'bhajan config init' to create a configuration file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// Err joins all collected errors, or returns nil if there were none.
func (p *PartialResult[T]) Err() error {
	return errors.Join(p.Errors...)
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
