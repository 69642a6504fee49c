package audio

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DecoderRegistry holds the decoders available to asset loading
type DecoderRegistry struct {
	decoders []Decoder
}

// NewDecoderRegistry creates an empty decoder registry
func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{
		decoders: make([]Decoder, 0),
	}
}

// NewDefaultRegistry creates a registry with WAV, Ogg Vorbis, MP3 and AIFF decoders
func NewDefaultRegistry() *DecoderRegistry {
	registry := NewDecoderRegistry()
	registry.Register(NewWavDecoder())
	registry.Register(NewOggDecoder())
	registry.Register(NewMp3Decoder())
	registry.Register(NewAiffDecoder())

	slog.Debug("default decoder registry initialized",
		"supported_formats", registry.SupportedFormats())

	return registry
}

// Register adds a decoder; earlier registrations win extension ties
func (r *DecoderRegistry) Register(decoder Decoder) {
	if decoder == nil {
		slog.Warn("attempted to register nil decoder")
		return
	}
	r.decoders = append(r.decoders, decoder)
	slog.Debug("decoder registered", "format", decoder.FormatName(), "total_decoders", len(r.decoders))
}

// Decoders returns all registered decoders
func (r *DecoderRegistry) Decoders() []Decoder {
	return r.decoders
}

// SupportedFormats returns the registered format names in registration order
func (r *DecoderRegistry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		formats = append(formats, decoder.FormatName())
	}
	return formats
}

// DetectFormat picks a decoder from the filename extension only
func (r *DecoderRegistry) DetectFormat(filename string) Decoder {
	if filename == "" {
		return nil
	}
	for _, decoder := range r.decoders {
		if decoder.CanDecode(filename) {
			return decoder
		}
	}
	return nil
}

// DetectFormatWithContent sniffs magic bytes first and falls back to the extension
func (r *DecoderRegistry) DetectFormatWithContent(filename string, content []byte) Decoder {
	if len(content) == 0 {
		return r.DetectFormat(filename)
	}

	header := content
	if len(header) > 512 {
		header = header[:512]
	}
	mime := strings.ToLower(mimetype.Detect(header).String())

	var format string
	switch {
	case strings.Contains(mime, "wav") || mime == "audio/vnd.wave":
		format = "WAV"
	case strings.Contains(mime, "ogg"):
		format = "OGG"
	case strings.Contains(mime, "mpeg") || strings.Contains(mime, "mp3"):
		format = "MP3"
	case strings.Contains(mime, "aiff"):
		format = "AIFF"
	}

	if format != "" {
		if decoder := r.findDecoderByFormat(format); decoder != nil {
			slog.Debug("format detected by magic bytes",
				"filename", filename,
				"format", format,
				"mime_type", mime)
			return decoder
		}
	}

	slog.Debug("magic detection inconclusive, using extension", "filename", filename, "mime_type", mime)
	return r.DetectFormat(filename)
}

func (r *DecoderRegistry) findDecoderByFormat(formatName string) Decoder {
	for _, decoder := range r.decoders {
		if strings.EqualFold(decoder.FormatName(), formatName) {
			return decoder
		}
	}
	return nil
}

// Decode buffers reader fully, detects the format and decodes it
func (r *DecoderRegistry) Decode(filename string, reader io.Reader) (*Clip, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	decoder := r.DetectFormatWithContent(filename, content)
	if decoder == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}

	clip, err := decoder.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s decode of %s: %w", decoder.FormatName(), filename, err)
	}

	slog.Debug("asset decoded",
		"filename", filename,
		"format", decoder.FormatName(),
		"channels", clip.Channels,
		"sample_rate", clip.SampleRate,
		"duration_ms", clip.Duration().Milliseconds())

	return clip, nil
}
