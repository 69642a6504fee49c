package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Manager is the capability set UI code depends on
type Manager interface {
	InitSounds() error
	Reinitialize() error
	Play(id SoundID) error
	ToggleSound(enabled bool)
	IsSoundEnabled() bool
	IsMspReleased() bool
	LoadBackgroundMusic() error
	PlayBackgroundMusic() error
}

// EventKind classifies manager events
type EventKind string

const (
	EventPlayed        EventKind = "played"
	EventMuted         EventKind = "muted"
	EventReleased      EventKind = "released"
	EventUninitialized EventKind = "uninitialized"
	EventUnknownSound  EventKind = "unknown_sound"
	EventMusicStarted  EventKind = "music_started"
	EventMusicStopped  EventKind = "music_stopped"
	EventInit          EventKind = "init"
	EventInitFailed    EventKind = "init_failed"
	EventReinitialized EventKind = "reinitialized"
	EventToggle        EventKind = "toggle"
)

var eventKinds = []EventKind{
	EventPlayed, EventMuted, EventReleased, EventUninitialized, EventUnknownSound,
	EventMusicStarted, EventMusicStopped, EventInit, EventInitFailed,
	EventReinitialized, EventToggle,
}

// ParseEventKind maps an event kind name such as "played" to its EventKind
func ParseEventKind(name string) (EventKind, error) {
	for _, k := range eventKinds {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown event kind '%s'", name)
}

// Event is something the manager did or declined to do
type Event struct {
	Kind    EventKind
	SoundID SoundID
	Detail  string
	Time    time.Time
}

// Observer receives events after the manager lock is released, so it may
// call back into the manager
type Observer interface {
	OnAudioEvent(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

func (f ObserverFunc) OnAudioEvent(e Event) {
	f(e)
}

// Option configures an AudioManager
type Option func(*AudioManager)

// WithObserver subscribes o to manager events
func WithObserver(o Observer) Option {
	return func(m *AudioManager) {
		m.observers = append(m.observers, o)
	}
}

// WithAutoReinitialize makes Play rebuild a released engine before playing
func WithAutoReinitialize(enabled bool) Option {
	return func(m *AudioManager) {
		m.autoReinit = enabled
	}
}

// WithSoundEnabled sets the initial sound-enabled flag (default true)
func WithSoundEnabled(enabled bool) Option {
	return func(m *AudioManager) {
		m.enabled = enabled
	}
}

// WithClock overrides the event timestamp source
func WithClock(now func() time.Time) Option {
	return func(m *AudioManager) {
		m.now = now
	}
}

// AudioManager plays sound effects and one background track on a Platform,
// recovering from engine release. Every method takes the same lock.
type AudioManager struct {
	mu       sync.Mutex
	catalog  Catalog
	adapter  *PlaybackEngineAdapter
	registry *SoundRegistry
	music    *BackgroundMusicController

	enabled    bool
	autoReinit bool
	observers  []Observer
	pending    []Event
	now        func() time.Time
}

var _ Manager = (*AudioManager)(nil)

// NewAudioManager creates a manager for catalog on platform. Nothing is
// acquired until InitSounds.
func NewAudioManager(platform Platform, catalog Catalog, opts ...Option) *AudioManager {
	m := &AudioManager{
		catalog:  copyCatalog(catalog),
		adapter:  NewPlaybackEngineAdapter(platform),
		registry: NewSoundRegistry(),
		music:    NewBackgroundMusicController(),
		enabled:  true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// InitSounds acquires the engine and loads every catalog asset. It is a
// no-op while Active; from Released it rebuilds everything.
func (m *AudioManager) InitSounds() error {
	m.mu.Lock()
	defer m.unlock()

	if m.adapter.State() == EngineActive && !m.adapter.IsReleased() {
		slog.Debug("init skipped, engine already active")
		return nil
	}
	if m.adapter.State() == EngineReleased {
		m.teardownLocked()
	}
	return m.initLocked(EventInit)
}

// Play dispatches sound id without waiting for it. Muted, released and
// uninitialized managers return nil without touching the engine. Unknown
// ids return an *UnknownSoundError.
func (m *AudioManager) Play(id SoundID) error {
	m.mu.Lock()
	defer m.unlock()

	if !m.enabled {
		m.emit(EventMuted, id, "")
		return nil
	}
	if m.adapter.State() == EngineUninitialized {
		m.emit(EventUninitialized, id, "")
		return nil
	}
	if m.adapter.IsReleased() {
		if !m.autoReinit {
			m.emit(EventReleased, id, "")
			return nil
		}
		slog.Info("engine released, reinitializing before play", "sound_id", int(id))
		if err := m.reinitLocked(); err != nil {
			m.emit(EventUninitialized, id, "")
			return nil
		}
	}

	h, ok := m.registry.Get(id)
	if !ok {
		slog.Warn("unknown sound id", "sound_id", int(id))
		m.emit(EventUnknownSound, id, "")
		return &UnknownSoundError{ID: id}
	}

	switch {
	case m.adapter.Play(h):
		m.emit(EventPlayed, id, "")
	case m.adapter.State() == EngineReleased:
		m.emit(EventReleased, id, "dropped")
	}
	return nil
}

// IsMspReleased reports whether the engine has been released
func (m *AudioManager) IsMspReleased() bool {
	m.mu.Lock()
	defer m.unlock()
	return m.adapter.IsReleased()
}

// Reinitialize tears everything down and rebuilds it. Music is reloaded
// but not resumed. On failure the manager is Uninitialized.
func (m *AudioManager) Reinitialize() error {
	m.mu.Lock()
	defer m.unlock()
	return m.reinitLocked()
}

// ToggleSound sets the enabled flag. Disabling stops playing music in the
// same call; enabling never resumes it.
func (m *AudioManager) ToggleSound(enabled bool) {
	m.mu.Lock()
	defer m.unlock()

	if m.enabled && !enabled && m.music.Stop() {
		m.emit(EventMusicStopped, 0, "muted")
	}
	changed := m.enabled != enabled
	m.enabled = enabled

	if changed {
		slog.Info("sound toggled", "enabled", enabled)
	}
	m.emit(EventToggle, 0, fmt.Sprintf("enabled=%t", enabled))
}

func (m *AudioManager) IsSoundEnabled() bool {
	m.mu.Lock()
	defer m.unlock()
	return m.enabled
}

// LoadBackgroundMusic reloads the catalog's music asset from scratch,
// stopping current playback first
func (m *AudioManager) LoadBackgroundMusic() error {
	m.mu.Lock()
	defer m.unlock()
	return m.loadMusicLocked()
}

// PlayBackgroundMusic starts the music loop. Muted, released and
// uninitialized managers return nil; a track that was never loaded
// returns ErrNotLoaded.
func (m *AudioManager) PlayBackgroundMusic() error {
	m.mu.Lock()
	defer m.unlock()

	if !m.enabled {
		return nil
	}
	if m.adapter.State() == EngineUninitialized || m.adapter.IsReleased() {
		return nil
	}

	started, err := m.music.Play(m.adapter)
	if err != nil {
		if errors.Is(err, ErrNotLoaded) {
			return err
		}
		if m.adapter.IsReleased() {
			slog.Debug("music start dropped, engine released")
			return nil
		}
		slog.Error("background music failed to start", "error", err)
		return fmt.Errorf("failed to start background music: %w", err)
	}
	if started {
		m.emit(EventMusicStarted, 0, string(m.music.Asset()))
	}
	return nil
}

// ReplaceCatalog swaps the catalog. An initialized manager is rebuilt from
// it at once, like Reinitialize; otherwise the next InitSounds uses it.
func (m *AudioManager) ReplaceCatalog(catalog Catalog) error {
	m.mu.Lock()
	defer m.unlock()

	m.catalog = copyCatalog(catalog)
	slog.Info("catalog replaced", "sounds", len(catalog.Sounds), "has_music", catalog.Music != "")
	if m.adapter.State() == EngineUninitialized {
		return nil
	}
	return m.reinitLocked()
}

// StopBackgroundMusic stops the music loop; stopping twice is a no-op
func (m *AudioManager) StopBackgroundMusic() {
	m.mu.Lock()
	defer m.unlock()

	if m.music.Stop() {
		m.emit(EventMusicStopped, 0, "")
	}
}

func (m *AudioManager) MusicState() MusicState {
	m.mu.Lock()
	defer m.unlock()
	return m.music.State()
}

// State returns the engine state, re-checking for external release
func (m *AudioManager) State() EngineState {
	m.mu.Lock()
	defer m.unlock()
	m.adapter.IsReleased()
	return m.adapter.State()
}

// SoundIDs returns the ids currently loaded, empty unless Active or Released
func (m *AudioManager) SoundIDs() []SoundID {
	m.mu.Lock()
	defer m.unlock()
	return m.registry.IDs()
}

// PlatformName identifies the platform in use
func (m *AudioManager) PlatformName() string {
	return m.adapter.PlatformName()
}

// Close releases the engine and all loaded state. The manager can be
// initialized again afterwards.
func (m *AudioManager) Close() error {
	m.mu.Lock()
	defer m.unlock()

	m.teardownLocked()
	slog.Debug("audio manager closed")
	return nil
}

func (m *AudioManager) initLocked(kind EventKind) error {
	if err := m.adapter.Acquire(); err != nil {
		m.emit(EventInitFailed, 0, err.Error())
		return err
	}

	if err := m.registry.Load(m.catalog.Sounds, m.adapter.Load); err != nil {
		m.teardownLocked()
		m.emit(EventInitFailed, 0, err.Error())
		return err
	}

	if m.catalog.Music != "" {
		if err := m.loadMusicLocked(); err != nil {
			m.teardownLocked()
			m.emit(EventInitFailed, 0, err.Error())
			return err
		}
	}

	slog.Info("audio initialized",
		"platform", m.adapter.PlatformName(),
		"sounds", m.registry.Len(),
		"music", m.music.State().String())
	m.emit(kind, 0, fmt.Sprintf("sounds=%d", m.registry.Len()))
	return nil
}

func (m *AudioManager) reinitLocked() error {
	slog.Info("reinitializing audio", "state", m.adapter.State().String())
	m.teardownLocked()
	return m.initLocked(EventReinitialized)
}

// teardownLocked clears the registry before the engine goes away so no
// play can see handles from a dead engine
func (m *AudioManager) teardownLocked() {
	if m.music.State() == MusicPlaying {
		m.emit(EventMusicStopped, 0, "teardown")
	}
	m.music.Reset()
	m.registry.Clear()
	m.adapter.Release()
}

func (m *AudioManager) loadMusicLocked() error {
	if m.music.State() == MusicPlaying {
		m.emit(EventMusicStopped, 0, "reload")
	}
	m.music.Reset()

	asset := m.catalog.Music
	if asset == "" {
		return &InitError{Err: ErrNoMusicAsset}
	}
	if m.adapter.State() != EngineActive || m.adapter.IsReleased() {
		return &InitError{Asset: asset, Err: ErrEngineUnavailable}
	}

	h, err := m.adapter.Load(asset)
	if err != nil {
		slog.Error("background music load failed", "asset", string(asset), "error", err)
		return &InitError{Asset: asset, Err: err}
	}
	m.music.Load(asset, h)
	return nil
}

func copyCatalog(c Catalog) Catalog {
	sounds := make(map[SoundID]AssetRef, len(c.Sounds))
	for id, ref := range c.Sounds {
		sounds[id] = ref
	}
	return Catalog{Sounds: sounds, Music: c.Music}
}

func (m *AudioManager) emit(kind EventKind, id SoundID, detail string) {
	if len(m.observers) == 0 {
		return
	}
	m.pending = append(m.pending, Event{Kind: kind, SoundID: id, Detail: detail, Time: m.now()})
}

// unlock releases the lock and then delivers queued events
func (m *AudioManager) unlock() {
	events := m.pending
	m.pending = nil
	observers := m.observers
	m.mu.Unlock()

	for _, e := range events {
		for _, o := range observers {
			o.OnAudioEvent(e)
		}
	}
}
