package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultSampleRate is the engine rate used when config leaves it unset
const DefaultSampleRate = 44100

// ErrInvalidPlatform is returned for an unrecognized audio_backend value
var ErrInvalidPlatform = errors.New("invalid audio platform")

// PlatformFactory creates Platform instances from the audio_backend setting
type PlatformFactory interface {
	CreatePlatform(kind string) (Platform, error)
	SupportedPlatforms() []string
	IsValidPlatform(kind string) bool
}

// DefaultPlatformFactory builds platforms sharing one asset loader and rate
type DefaultPlatformFactory struct {
	loader     ClipLoader
	sampleRate int
	devices    bool
}

// NewPlatformFactory creates a factory for the current build
func NewPlatformFactory(loader ClipLoader, sampleRate int) *DefaultPlatformFactory {
	return NewPlatformFactoryWithDevices(loader, sampleRate, devicesAvailable)
}

// NewPlatformFactoryWithDevices lets tests decide whether device platforms exist
func NewPlatformFactoryWithDevices(loader ClipLoader, sampleRate int, devices bool) *DefaultPlatformFactory {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &DefaultPlatformFactory{
		loader:     loader,
		sampleRate: sampleRate,
		devices:    devices,
	}
}

// CreatePlatform returns the platform named by kind; "" means "auto"
func (f *DefaultPlatformFactory) CreatePlatform(kind string) (Platform, error) {
	if kind == "" {
		kind = "auto"
	}

	slog.Debug("creating audio platform", "type", kind, "sample_rate", f.sampleRate)

	switch kind {
	case "auto":
		return f.createAutoPlatform()
	case "silent":
		return NewSilentPlatform(f.loader, f.sampleRate), nil
	case "malgo", "beep", "oto":
		if !f.devices {
			return nil, fmt.Errorf("%w: %s not built in", ErrPlatformNotAvailable, kind)
		}
		return newDevicePlatform(kind, f.loader, f.sampleRate)
	default:
		slog.Error("invalid platform type requested", "type", kind)
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlatform, kind)
	}
}

// SupportedPlatforms lists every accepted audio_backend value
func (f *DefaultPlatformFactory) SupportedPlatforms() []string {
	return []string{"auto", "malgo", "beep", "oto", "silent"}
}

// IsValidPlatform checks a backend name; empty defaults to auto
func (f *DefaultPlatformFactory) IsValidPlatform(kind string) bool {
	if kind == "" {
		return true
	}
	for _, supported := range f.SupportedPlatforms() {
		if kind == supported {
			return true
		}
	}
	return false
}

func (f *DefaultPlatformFactory) createAutoPlatform() (Platform, error) {
	if f.devices {
		slog.Debug("auto-detection result", "selected_type", "malgo")
		return newDevicePlatform("malgo", f.loader, f.sampleRate)
	}
	slog.Warn("no audio device support in this build, using silent platform")
	return NewSilentPlatform(f.loader, f.sampleRate), nil
}
