package audio

import "slices"

// FallbackPolicy lists known-good sources tried in order when a primary
// source fails to load. It is disabled unless Enabled is set.
type FallbackPolicy struct {
	Enabled bool
	Sources []string
}

// candidates returns the fallback URLs to try after url failed. A URL that
// is itself a fallback source gets no further attempts.
func (p FallbackPolicy) candidates(url string) []string {
	if !p.Enabled || len(p.Sources) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Sources))
	for _, s := range p.Sources {
		if s != "" {
			out = append(out, NormalizeURL(s))
		}
	}
	if slices.Contains(out, url) {
		return nil
	}
	return out
}
