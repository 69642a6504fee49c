package audio

import "log/slog"

// BackgroundMusicController owns the loop state of the single music track
type BackgroundMusicController struct {
	asset  AssetRef
	handle SoundHandle
	voice  Voice
	state  MusicState
}

// NewBackgroundMusicController returns a controller with nothing loaded
func NewBackgroundMusicController() *BackgroundMusicController {
	return &BackgroundMusicController{}
}

// Load installs a freshly loaded track, stopping whatever was playing
func (c *BackgroundMusicController) Load(asset AssetRef, h SoundHandle) {
	c.Stop()
	c.asset = asset
	c.handle = h
	c.state = MusicLoaded
	slog.Debug("background music loaded", "asset", string(asset))
}

// Play starts the loop on adapter. It reports whether playback started;
// an already playing track is left alone.
func (c *BackgroundMusicController) Play(adapter *PlaybackEngineAdapter) (bool, error) {
	switch c.state {
	case MusicNotLoaded:
		return false, ErrNotLoaded
	case MusicPlaying:
		return false, nil
	}

	voice, err := adapter.Loop(c.handle)
	if err != nil {
		return false, err
	}
	c.voice = voice
	c.state = MusicPlaying
	slog.Debug("background music playing", "asset", string(c.asset))
	return true, nil
}

// Stop cuts the loop synchronously and reports whether it was playing
func (c *BackgroundMusicController) Stop() bool {
	if c.state != MusicPlaying {
		return false
	}
	if c.voice != nil {
		c.voice.Stop()
		c.voice = nil
	}
	c.state = MusicStopped
	slog.Debug("background music stopped", "asset", string(c.asset))
	return true
}

func (c *BackgroundMusicController) State() MusicState {
	return c.state
}

// Asset returns the loaded track, empty when NotLoaded
func (c *BackgroundMusicController) Asset() AssetRef {
	return c.asset
}

// Reset stops playback and forgets the track
func (c *BackgroundMusicController) Reset() {
	c.Stop()
	c.asset = ""
	c.handle = SoundHandle{}
	c.state = MusicNotLoaded
}
