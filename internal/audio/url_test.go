package audio

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cdn.example.com/songs/My+Song.mp3", "https://cdn.example.com/songs/My%20Song.mp3"},
		{"https://cdn.example.com/a+b+c.mp3", "https://cdn.example.com/a%20b%20c.mp3"},
		{"https://cdn.example.com/plain.mp3", "https://cdn.example.com/plain.mp3"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		url  string
		want Format
	}{
		{"https://x/a.mp3", FormatMP3},
		{"https://x/a.MP3", FormatMP3},
		{"https://x/a.wav", FormatWAV},
		{"https://x/a.ogg", FormatOGG},
		{"https://x/a.m4a", FormatM4A},
		{"https://x/a.aac", FormatAAC},
		{"https://x/a.flac", FormatFLAC},
		{"https://x/a.mp3?sig=abc.wav", FormatMP3},
		{"https://x/a.flac#t=10", FormatFLAC},
		{"https://x/stream", FormatUnknown},
		{"https://x/a.txt", FormatUnknown},
		{"/music/local.ogg", FormatOGG},
		{"s3://bucket/dir/My%20Song.mp3", FormatMP3},
	}

	for _, tt := range tests {
		if got := DetectFormat(tt.url); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	if got := FormatUnknown.String(); got != "unknown" {
		t.Errorf("FormatUnknown.String() = %q, want %q", got, "unknown")
	}
	if got := FormatFLAC.String(); got != "flac" {
		t.Errorf("FormatFLAC.String() = %q, want %q", got, "flac")
	}
}

func TestFallbackCandidates(t *testing.T) {
	sources := []string{"https://x/ok+1.mp3", "", "https://x/ok2.mp3"}

	tests := []struct {
		name   string
		policy FallbackPolicy
		url    string
		want   int
	}{
		{"disabled", FallbackPolicy{Sources: sources}, "https://x/a.mp3", 0},
		{"enabled", FallbackPolicy{Enabled: true, Sources: sources}, "https://x/a.mp3", 2},
		{"no sources", FallbackPolicy{Enabled: true}, "https://x/a.mp3", 0},
		{"url is a fallback", FallbackPolicy{Enabled: true, Sources: sources}, "https://x/ok%201.mp3", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.candidates(tt.url)
			if len(got) != tt.want {
				t.Errorf("candidates() = %v, want %d entries", got, tt.want)
			}
		})
	}
}
