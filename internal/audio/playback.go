package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// PlaybackEngineAdapter is the only component that talks to a Platform.
// It tracks the engine lifecycle and turns release into a state rather
// than an error. It is not safe for concurrent use; AudioManager
// serializes access.
type PlaybackEngineAdapter struct {
	platform Platform
	handle   EngineHandle
	state    EngineState
}

// NewPlaybackEngineAdapter wraps platform; no engine is acquired yet
func NewPlaybackEngineAdapter(platform Platform) *PlaybackEngineAdapter {
	return &PlaybackEngineAdapter{platform: platform}
}

// Acquire creates a new engine instance, releasing any previous one first
func (a *PlaybackEngineAdapter) Acquire() error {
	if a.state != EngineUninitialized {
		a.Release()
	}

	h, err := a.platform.Acquire()
	if err != nil {
		slog.Error("engine acquire failed", "platform", a.platform.Name(), "error", err)
		return &InitError{Err: fmt.Errorf("%s: %w", a.platform.Name(), err)}
	}

	a.handle = h
	a.state = EngineActive
	slog.Debug("engine acquired", "platform", a.platform.Name(), "engine", h)
	return nil
}

// Release frees the engine. It is safe on a released or never-acquired engine.
func (a *PlaybackEngineAdapter) Release() {
	if a.state == EngineUninitialized {
		return
	}

	if err := a.platform.Release(a.handle); err != nil {
		slog.Warn("engine release reported error", "platform", a.platform.Name(), "engine", a.handle, "error", err)
	}
	slog.Debug("engine released", "platform", a.platform.Name(), "engine", a.handle)
	a.handle = 0
	a.state = EngineUninitialized
}

// IsReleased re-queries the platform and latches Released once observed
func (a *PlaybackEngineAdapter) IsReleased() bool {
	if a.state == EngineActive && a.platform.IsReleased(a.handle) {
		slog.Warn("engine released externally", "platform", a.platform.Name(), "engine", a.handle)
		a.state = EngineReleased
	}
	return a.state == EngineReleased
}

// State returns the lifecycle state as last observed
func (a *PlaybackEngineAdapter) State() EngineState {
	return a.state
}

// Load decodes ref onto the active engine
func (a *PlaybackEngineAdapter) Load(ref AssetRef) (SoundHandle, error) {
	if a.state != EngineActive || a.IsReleased() {
		return SoundHandle{}, ErrEngineUnavailable
	}
	return a.platform.DecodeAndLoad(a.handle, ref)
}

// Play dispatches s and reports whether the engine accepted it. Failures,
// including a release racing the call, are logged and swallowed.
func (a *PlaybackEngineAdapter) Play(s SoundHandle) bool {
	if a.state != EngineActive || a.IsReleased() {
		return false
	}
	if s.IsZero() || s.Engine() != a.handle {
		slog.Warn("play skipped, handle belongs to another engine", "engine", a.handle, "handle_engine", s.Engine())
		return false
	}

	if err := a.platform.PlaySound(a.handle, s); err != nil {
		if errors.Is(err, ErrEngineReleased) || a.IsReleased() {
			slog.Debug("play dropped, engine released mid-call", "engine", a.handle)
			a.state = EngineReleased
			return false
		}
		slog.Warn("play failed", "platform", a.platform.Name(), "engine", a.handle, "error", err)
		return false
	}
	return true
}

// Loop starts s repeating on the active engine
func (a *PlaybackEngineAdapter) Loop(s SoundHandle) (Voice, error) {
	if a.state != EngineActive || a.IsReleased() {
		return nil, ErrEngineUnavailable
	}

	voice, err := a.platform.LoopSound(a.handle, s)
	if err != nil {
		if errors.Is(err, ErrEngineReleased) {
			a.state = EngineReleased
		}
		return nil, err
	}
	return voice, nil
}

// PlatformName identifies the wrapped platform
func (a *PlaybackEngineAdapter) PlatformName() string {
	return a.platform.Name()
}
