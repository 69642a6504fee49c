package audio

import (
	"errors"
	"fmt"
)

// Manager-level errors
var (
	ErrInit         = errors.New("audio initialization failed")
	ErrUnknownSound = errors.New("unknown sound id")
	ErrNotLoaded    = errors.New("background music not loaded")
)

// Engine-level errors reported by Platform implementations
var (
	ErrPlatformNotAvailable = errors.New("audio platform not available")
	ErrEngineReleased       = errors.New("audio engine released")
	ErrEngineUnavailable    = errors.New("audio engine not active")
	ErrNoMusicAsset         = errors.New("catalog has no background music asset")
	ErrInvalidHandle        = errors.New("sound handle does not belong to this engine")
)

// InitError describes a failure to acquire the engine or decode an asset.
// It matches ErrInit with errors.Is.
type InitError struct {
	Asset AssetRef // empty when the engine itself could not be acquired
	Err   error
}

func (e *InitError) Error() string {
	if e.Asset == "" {
		return fmt.Sprintf("audio init: %v", e.Err)
	}
	return fmt.Sprintf("audio init: asset %q: %v", e.Asset, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

func (e *InitError) Is(target error) bool {
	return target == ErrInit
}

// UnknownSoundError is returned by Play for ids missing from the registry.
// It is informational; no sound is played and nothing else changes.
type UnknownSoundError struct {
	ID SoundID
}

func (e *UnknownSoundError) Error() string {
	return fmt.Sprintf("unknown sound id %d", e.ID)
}

func (e *UnknownSoundError) Is(target error) bool {
	return target == ErrUnknownSound
}
