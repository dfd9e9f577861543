package audio

import (
	"net/url"
	"path"
	"strings"
)

// Format is a container hint inferred from a URL.
type Format string

// Supported formats
const (
	FormatUnknown Format = ""
	FormatMP3     Format = "mp3"
	FormatWAV     Format = "wav"
	FormatOGG     Format = "ogg"
	FormatM4A     Format = "m4a"
	FormatAAC     Format = "aac"
	FormatFLAC    Format = "flac"
)

var knownFormats = map[string]Format{
	"mp3":  FormatMP3,
	"wav":  FormatWAV,
	"ogg":  FormatOGG,
	"m4a":  FormatM4A,
	"aac":  FormatAAC,
	"flac": FormatFLAC,
}

// NormalizeURL repairs storage links that encode spaces as a literal '+'.
func NormalizeURL(raw string) string {
	return strings.ReplaceAll(raw, "+", "%20")
}

// DetectFormat infers the format from the URL path extension, ignoring any
// query string or fragment. It returns FormatUnknown when there is no
// recognizable extension.
func DetectFormat(raw string) Format {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else {
		if i := strings.IndexAny(p, "?#"); i >= 0 {
			p = p[:i]
		}
	}

	ext := strings.TrimPrefix(path.Ext(p), ".")
	if f, ok := knownFormats[strings.ToLower(ext)]; ok {
		return f
	}
	return FormatUnknown
}

// String returns the format name, or "unknown".
func (f Format) String() string {
	if f == FormatUnknown {
		return "unknown"
	}
	return string(f)
}
