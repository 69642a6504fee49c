package audio

import (
	"log/slog"
	"sync"
)

// SilentPlatform is a Platform with no output device. Assets are still
// decoded, so a catalog is fully validated, and dispatches are counted.
// It is used for the "silent" backend and for headless runs.
type SilentPlatform struct {
	engine *mixerEngine

	mu          sync.Mutex
	plays       int
	loops       int
	activeLoops int
}

// SilentStats counts what a SilentPlatform was asked to play
type SilentStats struct {
	Plays       int
	Loops       int
	ActiveLoops int
}

// NewSilentPlatform creates a silent platform decoding through loader
func NewSilentPlatform(loader ClipLoader, sampleRate int) *SilentPlatform {
	return &SilentPlatform{engine: newMixerEngine(loader, sampleRate)}
}

func (p *SilentPlatform) Name() string {
	return "silent"
}

func (p *SilentPlatform) Acquire() (EngineHandle, error) {
	h := p.engine.begin()
	slog.Debug("silent engine acquired", "engine", h)
	return h, nil
}

func (p *SilentPlatform) IsReleased(h EngineHandle) bool {
	return p.engine.isReleased(h)
}

func (p *SilentPlatform) DecodeAndLoad(h EngineHandle, ref AssetRef) (SoundHandle, error) {
	return p.engine.load(h, ref)
}

func (p *SilentPlatform) PlaySound(h EngineHandle, s SoundHandle) error {
	p.engine.mu.Lock()
	_, err := p.engine.bufferLocked(h, s)
	p.engine.mu.Unlock()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.plays++
	p.mu.Unlock()
	return nil
}

func (p *SilentPlatform) LoopSound(h EngineHandle, s SoundHandle) (Voice, error) {
	p.engine.mu.Lock()
	_, err := p.engine.bufferLocked(h, s)
	p.engine.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.loops++
	p.activeLoops++
	p.mu.Unlock()
	return &silentVoice{platform: p, engine: h}, nil
}

func (p *SilentPlatform) Release(h EngineHandle) error {
	if p.engine.end(h) {
		p.mu.Lock()
		p.activeLoops = 0
		p.mu.Unlock()
		slog.Debug("silent engine released", "engine", h)
	}
	return nil
}

// SimulateRelease drops the current engine as if the OS had reclaimed it
func (p *SilentPlatform) SimulateRelease() {
	p.engine.mu.Lock()
	h := p.engine.generation
	p.engine.mu.Unlock()

	p.engine.markReleased(h)
	p.mu.Lock()
	p.activeLoops = 0
	p.mu.Unlock()
	slog.Info("silent engine release simulated", "engine", h)
}

// Stats returns dispatch counters
func (p *SilentPlatform) Stats() SilentStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SilentStats{Plays: p.plays, Loops: p.loops, ActiveLoops: p.activeLoops}
}

type silentVoice struct {
	platform *SilentPlatform
	engine   EngineHandle
	once     sync.Once
}

func (v *silentVoice) Stop() {
	v.once.Do(func() {
		// loops of a dropped generation were already cleared
		if v.platform.engine.isReleased(v.engine) {
			return
		}
		v.platform.mu.Lock()
		if v.platform.activeLoops > 0 {
			v.platform.activeLoops--
		}
		v.platform.mu.Unlock()
	})
}
