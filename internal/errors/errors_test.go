package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"explicit suggestion", WithSuggestion(errors.New("boom"), "do this"), "do this"},
		{"no source", fmt.Errorf("load: %w", ErrNoSource), "The track has no audio URL"},
		{"timeout beats load failure", fmt.Errorf("%w: %w", ErrLoadFailed, ErrLoadTimeout), "The media host is slow"},
		{"load failure", fmt.Errorf("%w: 404", ErrLoadFailed), "Check that the track URL is reachable"},
		{"unsupported", ErrUnsupportedFormat, "Supported formats"},
		{"playlist", ErrPlaylistNotFound, "bhajan playlists"},
		{"network", errors.New("dial tcp: connection refused"), "internet connection"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" && got != "" {
				t.Errorf("GetSuggestion() = %q, want empty", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}

	got := Format(ErrQueueEmpty)
	want := "Error: queue is empty\n\nSuggestion: Load a playlist first"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	if got := Format(errors.New("plain")); got != "Error: plain" {
		t.Errorf("Format() = %q, want %q", got, "Error: plain")
	}
}

func TestBhajanErrorUnwrap(t *testing.T) {
	err := WithSuggestion(ErrIndexOutOfRange, "pick another")
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Error("errors.Is() = false, want true through BhajanError")
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[[]string]
	if p.HasErrors() || p.Err() != nil || p.ErrorSummary() != "" {
		t.Fatal("empty PartialResult should report no errors")
	}

	p.AddError(nil)
	p.AddError(errors.New("first"))
	if got := p.ErrorSummary(); got != "first" {
		t.Errorf("ErrorSummary() = %q, want %q", got, "first")
	}

	p.AddError(errors.New("second"))
	if !strings.HasPrefix(p.ErrorSummary(), "2 errors occurred:") {
		t.Errorf("ErrorSummary() = %q, want a 2-error summary", p.ErrorSummary())
	}
	if p.Err() == nil {
		t.Error("Err() = nil, want joined error")
	}
}
