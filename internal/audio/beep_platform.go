//go:build cgo

package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const speakerBufferDuration = time.Second / 30

var (
	speakerOnce    sync.Once
	speakerInitErr error
	speakerRate    beep.SampleRate
)

// BeepPlatform plays through the process-wide beep speaker. The speaker can
// only be initialized once, so generations attach and detach the mixer
// rather than reopening the device.
type BeepPlatform struct {
	engine *mixerEngine
}

// NewBeepPlatform creates a speaker-backed platform
func NewBeepPlatform(loader ClipLoader, sampleRate int) *BeepPlatform {
	return &BeepPlatform{engine: newMixerEngine(loader, sampleRate)}
}

func (p *BeepPlatform) Name() string {
	return "beep"
}

func (p *BeepPlatform) Acquire() (EngineHandle, error) {
	rate := p.engine.format.SampleRate
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerInitErr = speaker.Init(rate, rate.N(speakerBufferDuration))
	})
	if speakerInitErr != nil {
		slog.Error("speaker init failed", "error", speakerInitErr)
		return 0, fmt.Errorf("%w: %v", ErrPlatformNotAvailable, speakerInitErr)
	}
	if err := checkSpeakerRate(speakerRate, rate); err != nil {
		slog.Error("speaker already running at another rate", "speaker_rate", int(speakerRate), "sample_rate", int(rate))
		return 0, err
	}

	speaker.Clear()
	h := p.engine.begin()
	speaker.Play(beep.Streamer(p.engine))
	slog.Info("beep engine acquired", "engine", h, "sample_rate", int(rate))
	return h, nil
}

// checkSpeakerRate rejects a rate other than the one the speaker was opened
// with; the speaker would play it at the wrong speed
func checkSpeakerRate(speakerRate, rate beep.SampleRate) error {
	if speakerRate != rate {
		return fmt.Errorf("%w: beep speaker is running at %d Hz, cannot switch to %d Hz",
			ErrPlatformNotAvailable, int(speakerRate), int(rate))
	}
	return nil
}

func (p *BeepPlatform) IsReleased(h EngineHandle) bool {
	return p.engine.isReleased(h)
}

func (p *BeepPlatform) DecodeAndLoad(h EngineHandle, ref AssetRef) (SoundHandle, error) {
	return p.engine.load(h, ref)
}

func (p *BeepPlatform) PlaySound(h EngineHandle, s SoundHandle) error {
	return p.engine.play(h, s)
}

func (p *BeepPlatform) LoopSound(h EngineHandle, s SoundHandle) (Voice, error) {
	return p.engine.loop(h, s)
}

func (p *BeepPlatform) Release(h EngineHandle) error {
	if p.engine.end(h) {
		speaker.Clear()
		slog.Info("beep engine released", "engine", h)
	}
	return nil
}
