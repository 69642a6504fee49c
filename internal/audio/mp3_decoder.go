package audio

import (
	"encoding/binary"
	"io"
	"log/slog"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Mp3Decoder handles MP3 audio format decoding
type Mp3Decoder struct{}

// NewMp3Decoder creates a new MP3 decoder instance
func NewMp3Decoder() *Mp3Decoder {
	return &Mp3Decoder{}
}

// Decode reads an MP3 stream fully. go-mp3 always yields 16-bit stereo PCM.
func (d *Mp3Decoder) Decode(reader io.Reader) (*Clip, error) {
	decoder, err := mp3.NewDecoder(reader)
	if err != nil {
		slog.Debug("failed to create MP3 decoder", "error", err)
		return nil, ErrInvalidData
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return nil, ErrInvalidData
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		slog.Debug("failed to read MP3 PCM data", "error", err)
		return nil, ErrReadFailure
	}
	if len(pcm) < 4 {
		return nil, ErrInvalidData
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		samples[i] = float32(v) / (1 << 15)
	}

	return &Clip{
		Samples:    samples,
		Channels:   2,
		SampleRate: sampleRate,
	}, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *Mp3Decoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".mp3") || strings.HasSuffix(lower, ".mpeg")
}

// FormatName returns the name of the format this decoder handles
func (d *Mp3Decoder) FormatName() string {
	return "MP3"
}
