package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
)

// wavBytes builds a PCM WAV file whose samples all sit at half scale
func wavBytes(sampleRate, channels, bitsPerSample, frames int) []byte {
	bytesPerSample := bitsPerSample / 8
	dataSize := frames * channels * bytesPerSample

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	half := int64(1) << (bitsPerSample - 2)
	sample := make([]byte, 8)
	binary.LittleEndian.PutUint64(sample, uint64(half))
	for i := 0; i < frames*channels; i++ {
		buf.Write(sample[:bytesPerSample])
	}
	return buf.Bytes()
}

// fakeLoader returns canned clips, failing refs listed in fail
type fakeLoader struct {
	clip *Clip
	fail map[AssetRef]error
}

func (l *fakeLoader) LoadClip(ref AssetRef) (*Clip, error) {
	if err, ok := l.fail[ref]; ok {
		return nil, err
	}
	if l.clip != nil {
		return l.clip, nil
	}
	return &Clip{Samples: make([]float32, 200), Channels: 2, SampleRate: 44100}, nil
}

var errFakeDecode = errors.New("fake decode failure")

// fakePlatform records every engine call
type fakePlatform struct {
	mu sync.Mutex

	acquireErr error
	loadErr    map[AssetRef]error
	playErr    error

	generation  EngineHandle
	released    bool
	releasedGen EngineHandle
	nextSlot    uint64

	acquires int
	releases int
	loads    []AssetRef
	plays    []SoundHandle
	stale    int
	loops    int
	voices   []*fakeVoice
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{loadErr: map[AssetRef]error{}, released: true}
}

func (p *fakePlatform) Name() string { return "fake" }

func (p *fakePlatform) Acquire() (EngineHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquires++
	if p.acquireErr != nil {
		return 0, p.acquireErr
	}
	p.generation++
	p.released = false
	return p.generation, nil
}

func (p *fakePlatform) IsReleased(h EngineHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return h != p.generation || p.released
}

func (p *fakePlatform) DecodeAndLoad(h EngineHandle, ref AssetRef) (SoundHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, ref)
	if err, ok := p.loadErr[ref]; ok {
		return SoundHandle{}, err
	}
	p.nextSlot++
	return SoundHandle{engine: h, slot: p.nextSlot}, nil
}

func (p *fakePlatform) PlaySound(h EngineHandle, s SoundHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, s)
	// a handle from a torn down generation, or one the manager already released
	if s.engine != h || h != p.generation || h == p.releasedGen {
		p.stale++
	}
	return p.playErr
}

func (p *fakePlatform) LoopSound(h EngineHandle, s SoundHandle) (Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loops++
	v := &fakeVoice{}
	p.voices = append(p.voices, v)
	return v, nil
}

func (p *fakePlatform) Release(h EngineHandle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h == p.generation && !p.released {
		p.releases++
		p.released = true
		p.releasedGen = h
	}
	return nil
}

// simulateRelease drops the engine the way an OS reclaim would
func (p *fakePlatform) simulateRelease() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
}

func (p *fakePlatform) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.plays)
}

func (p *fakePlatform) stalePlays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stale
}

// engineCalls counts every call that reaches the engine after setup
func (p *fakePlatform) engineCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.plays) + p.loops
}

type fakeVoice struct {
	mu      sync.Mutex
	stopped int
}

func (v *fakeVoice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped++
}

func (v *fakeVoice) stops() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stopped
}
