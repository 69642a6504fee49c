package audio

import (
	"io"
	"log/slog"
	"strings"

	"github.com/jfreymuth/oggvorbis"
)

// OggDecoder handles Ogg Vorbis decoding, the usual format for music tracks
type OggDecoder struct{}

// NewOggDecoder creates a new Ogg Vorbis decoder instance
func NewOggDecoder() *OggDecoder {
	return &OggDecoder{}
}

// Decode reads the whole Vorbis stream; oggvorbis already yields float32 samples
func (d *OggDecoder) Decode(reader io.Reader) (*Clip, error) {
	samples, format, err := oggvorbis.ReadAll(reader)
	if err != nil {
		slog.Debug("failed to decode Ogg Vorbis stream", "error", err)
		return nil, ErrInvalidData
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 || len(samples) == 0 {
		return nil, ErrInvalidData
	}

	return &Clip{
		Samples:    samples,
		Channels:   format.Channels,
		SampleRate: format.SampleRate,
	}, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *OggDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".ogg") || strings.HasSuffix(lower, ".oga")
}

// FormatName returns the name of the format this decoder handles
func (d *OggDecoder) FormatName() string {
	return "OGG"
}
