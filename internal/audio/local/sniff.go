package local

import (
	"bytes"

	"github.com/tessro/bhajan/internal/audio"
)

// Sniff guesses the container from leading bytes. It returns
// audio.FormatUnknown when nothing matches.
func Sniff(data []byte) audio.Format {
	switch {
	case bytes.HasPrefix(data, []byte("ID3")):
		return audio.FormatMP3
	case bytes.HasPrefix(data, []byte("RIFF")) && len(data) >= 12 && string(data[8:12]) == "WAVE":
		return audio.FormatWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return audio.FormatFLAC
	case bytes.HasPrefix(data, []byte("OggS")):
		return audio.FormatOGG
	case len(data) >= 8 && string(data[4:8]) == "ftyp":
		return audio.FormatM4A
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xF6 == 0xF0:
		// ADTS header: sync word with layer bits zero.
		return audio.FormatAAC
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return audio.FormatMP3
	}
	return audio.FormatUnknown
}
