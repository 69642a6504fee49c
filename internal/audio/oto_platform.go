//go:build cgo

package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoInitErr error
	otoRate    int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoInitErr = err
			return
		}
		<-ready
		otoContext = ctx
		otoRate = sampleRate
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("oto context already running at %d Hz", otoRate)
	}
	return otoContext, nil
}

// OtoPlatform feeds the mixer to one oto player. Release suspends the
// shared context; a context error counts as an external release.
type OtoPlatform struct {
	engine *mixerEngine

	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
}

// NewOtoPlatform creates an oto-backed platform
func NewOtoPlatform(loader ClipLoader, sampleRate int) *OtoPlatform {
	return &OtoPlatform{engine: newMixerEngine(loader, sampleRate)}
}

func (p *OtoPlatform) Name() string {
	return "oto"
}

func (p *OtoPlatform) Acquire() (EngineHandle, error) {
	ctx, err := sharedOtoContext(int(p.engine.format.SampleRate))
	if err != nil {
		slog.Error("oto context unavailable", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrPlatformNotAvailable, err)
	}
	if err := ctx.Resume(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPlatformNotAvailable, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.closePlayerLocked()
	h := p.engine.begin()
	p.ctx = ctx
	p.player = ctx.NewPlayer(newStreamReader(p.engine))
	p.player.Play()

	slog.Info("oto engine acquired", "engine", h)
	return h, nil
}

func (p *OtoPlatform) IsReleased(h EngineHandle) bool {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()

	if ctx != nil && ctx.Err() != nil {
		slog.Warn("oto context failed", "engine", h, "error", ctx.Err())
		p.engine.markReleased(h)
	}
	return p.engine.isReleased(h)
}

func (p *OtoPlatform) DecodeAndLoad(h EngineHandle, ref AssetRef) (SoundHandle, error) {
	return p.engine.load(h, ref)
}

func (p *OtoPlatform) PlaySound(h EngineHandle, s SoundHandle) error {
	return p.engine.play(h, s)
}

func (p *OtoPlatform) LoopSound(h EngineHandle, s SoundHandle) (Voice, error) {
	return p.engine.loop(h, s)
}

func (p *OtoPlatform) Release(h EngineHandle) error {
	if !p.engine.end(h) {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.closePlayerLocked()
	if p.ctx != nil {
		if err := p.ctx.Suspend(); err != nil {
			slog.Warn("oto suspend failed", "error", err)
		}
	}
	slog.Info("oto engine released", "engine", h)
	return nil
}

func (p *OtoPlatform) closePlayerLocked() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		slog.Debug("oto player close failed", "error", err)
	}
	p.player = nil
}
