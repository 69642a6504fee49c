//go:build cgo

package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// MalgoPlatform renders a beep mixer into one miniaudio playback device.
// Each Acquire opens a fresh context and device; the device Stop callback
// marks the generation released when the OS takes the device away.
type MalgoPlatform struct {
	engine *mixerEngine

	mu      sync.Mutex
	ctx     *Context
	device  *malgo.Device
	current EngineHandle

	// touched only from the device callback
	frames [][2]float64
}

// NewMalgoPlatform creates a malgo platform; no device is opened until Acquire
func NewMalgoPlatform(loader ClipLoader, sampleRate int) *MalgoPlatform {
	return &MalgoPlatform{engine: newMixerEngine(loader, sampleRate)}
}

func (p *MalgoPlatform) Name() string {
	return "malgo"
}

func (p *MalgoPlatform) Acquire() (EngineHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device != nil {
		p.closeDeviceLocked()
	}

	ctx, err := NewContext()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPlatformNotAvailable, err)
	}

	h := p.engine.begin()

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 2
	cfg.SampleRate = uint32(p.engine.format.SampleRate)
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: p.onSamples,
		Stop: func() {
			slog.Warn("playback device stopped", "engine", h)
			p.engine.markReleased(h)
		},
	}

	device, err := malgo.InitDevice(ctx.Raw(), cfg, callbacks)
	if err != nil {
		p.engine.end(h)
		ctx.Close()
		slog.Error("failed to initialize playback device", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrPlatformNotAvailable, err)
	}

	if err := device.Start(); err != nil {
		p.engine.end(h)
		device.Uninit()
		ctx.Close()
		slog.Error("failed to start playback device", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrPlatformNotAvailable, err)
	}

	p.ctx = ctx
	p.device = device
	p.current = h
	slog.Info("malgo engine acquired", "engine", h, "sample_rate", cfg.SampleRate)
	return h, nil
}

func (p *MalgoPlatform) IsReleased(h EngineHandle) bool {
	return p.engine.isReleased(h)
}

func (p *MalgoPlatform) DecodeAndLoad(h EngineHandle, ref AssetRef) (SoundHandle, error) {
	return p.engine.load(h, ref)
}

func (p *MalgoPlatform) PlaySound(h EngineHandle, s SoundHandle) error {
	return p.engine.play(h, s)
}

func (p *MalgoPlatform) LoopSound(h EngineHandle, s SoundHandle) (Voice, error) {
	return p.engine.loop(h, s)
}

func (p *MalgoPlatform) Release(h EngineHandle) error {
	p.engine.end(h)

	p.mu.Lock()
	defer p.mu.Unlock()

	if h != p.current || p.device == nil {
		return nil
	}
	p.closeDeviceLocked()
	slog.Info("malgo engine released", "engine", h)
	return nil
}

// closeDeviceLocked must not run under engine.mu: Uninit waits for the
// data callback, which takes it
func (p *MalgoPlatform) closeDeviceLocked() {
	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
	if p.ctx != nil {
		if err := p.ctx.Close(); err != nil {
			slog.Warn("miniaudio context close failed", "error", err)
		}
		p.ctx = nil
	}
}

func (p *MalgoPlatform) onSamples(out, _ []byte, frameCount uint32) {
	n := int(frameCount)
	if cap(p.frames) < n {
		p.frames = make([][2]float64, n)
	}
	frames := p.frames[:n]
	p.engine.Stream(frames)
	encodeFloat32LE(out, frames)
}
