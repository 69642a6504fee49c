package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/youpy/go-wav"
)

// WavDecoder handles WAV audio format decoding
type WavDecoder struct{}

// NewWavDecoder creates a new WAV decoder instance
func NewWavDecoder() *WavDecoder {
	return &WavDecoder{}
}

// Decode reads 16, 24 or 32 bit PCM WAV data
func (d *WavDecoder) Decode(reader io.Reader) (*Clip, error) {
	// go-wav needs a ReaderAt
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	wavReader := wav.NewReader(bytes.NewReader(data))
	format, err := wavReader.Format()
	if err != nil {
		slog.Debug("failed to read WAV format", "error", err)
		return nil, ErrInvalidData
	}

	channels := int(format.NumChannels)
	if channels == 0 || format.SampleRate == 0 {
		return nil, ErrInvalidData
	}
	// go-wav samples carry at most two channel values
	if channels > 2 {
		return nil, ErrUnsupportedFormat
	}

	var scale float32
	switch format.BitsPerSample {
	case 16:
		scale = 1 << 15
	case 24:
		scale = 1 << 23
	case 32:
		scale = 1 << 31
	default:
		slog.Debug("unsupported WAV bit depth", "bits", format.BitsPerSample)
		return nil, ErrUnsupportedFormat
	}

	var samples []float32
	for {
		chunk, err := wavReader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrReadFailure
		}
		if len(chunk) == 0 {
			break
		}
		for _, sample := range chunk {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float32(sample.Values[ch])/scale)
			}
		}
	}

	if len(samples) == 0 {
		return nil, ErrInvalidData
	}

	return &Clip{
		Samples:    samples,
		Channels:   channels,
		SampleRate: int(format.SampleRate),
	}, nil
}

// CanDecode checks if this decoder can handle the given filename
func (d *WavDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}
