package audio

import (
	"errors"
	"io"
	"time"

	"github.com/gopxl/beep"
)

// Common decoder errors
var (
	ErrInvalidData       = errors.New("invalid audio data")
	ErrReadFailure       = errors.New("failed to read audio data")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Clip is decoded PCM audio, interleaved float32 samples in [-1, 1]
type Clip struct {
	Samples    []float32
	Channels   int
	SampleRate int
}

// Frames returns the number of sample frames in the clip
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback length at the clip's own sample rate
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Streamer exposes the clip as a seekable stereo beep stream.
// Mono clips are duplicated to both channels; extra channels are dropped.
func (c *Clip) Streamer() beep.StreamSeeker {
	return &clipStreamer{clip: c}
}

// Decoder turns an encoded asset into a Clip
type Decoder interface {
	// Decode reads encoded audio from reader and returns decoded PCM data
	Decode(reader io.Reader) (*Clip, error)

	// CanDecode checks if this decoder handles the given filename
	CanDecode(filename string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}

type clipStreamer struct {
	clip *Clip
	pos  int
}

func (s *clipStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.clip.Frames()
	if s.pos >= frames {
		return 0, false
	}

	ch := s.clip.Channels
	n := 0
	for n < len(samples) && s.pos < frames {
		base := s.pos * ch
		left := float64(s.clip.Samples[base])
		right := left
		if ch > 1 {
			right = float64(s.clip.Samples[base+1])
		}
		samples[n][0] = left
		samples[n][1] = right
		n++
		s.pos++
	}
	return n, true
}

func (s *clipStreamer) Err() error {
	return nil
}

func (s *clipStreamer) Len() int {
	return s.clip.Frames()
}

func (s *clipStreamer) Position() int {
	return s.pos
}

func (s *clipStreamer) Seek(p int) error {
	if p < 0 || p > s.clip.Frames() {
		return errors.New("seek position out of range")
	}
	s.pos = p
	return nil
}
