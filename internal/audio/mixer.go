package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/gopxl/beep"
)

const resampleQuality = 4

// mixerEngine is the bookkeeping shared by platforms that render one
// beep.Mixer into a device: engine generations, loaded buffers, voices.
// It is itself the beep.Streamer the device side pulls from.
type mixerEngine struct {
	loader ClipLoader
	format beep.Format

	mu         sync.Mutex
	mixer      *beep.Mixer
	generation EngineHandle
	released   bool
	buffers    map[uint64]*beep.Buffer
	nextSlot   uint64
}

func newMixerEngine(loader ClipLoader, sampleRate int) *mixerEngine {
	return &mixerEngine{
		loader:   loader,
		format:   beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 4},
		released: true,
	}
}

// begin starts a new engine generation with an empty mixer
func (e *mixerEngine) begin() EngineHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.generation++
	e.released = false
	e.mixer = &beep.Mixer{}
	e.buffers = make(map[uint64]*beep.Buffer)
	return e.generation
}

// end releases generation h, reporting whether it was still live
func (e *mixerEngine) end(h EngineHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h != e.generation || e.released {
		return false
	}
	e.released = true
	if e.mixer != nil {
		e.mixer.Clear()
	}
	e.buffers = nil
	return true
}

// markReleased records an asynchronous loss of generation h
func (e *mixerEngine) markReleased(h EngineHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h == e.generation {
		e.released = true
	}
}

func (e *mixerEngine) isReleased(h EngineHandle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return h != e.generation || e.released
}

// load decodes ref and renders it into a buffer at the engine sample rate
func (e *mixerEngine) load(h EngineHandle, ref AssetRef) (SoundHandle, error) {
	if e.loader == nil {
		return SoundHandle{}, fmt.Errorf("no asset loader configured")
	}
	if e.isReleased(h) {
		return SoundHandle{}, ErrEngineReleased
	}

	clip, err := e.loader.LoadClip(ref)
	if err != nil {
		return SoundHandle{}, err
	}
	if clip.Frames() == 0 {
		return SoundHandle{}, ErrInvalidData
	}

	var stream beep.Streamer = clip.Streamer()
	if clip.SampleRate != int(e.format.SampleRate) {
		stream = beep.Resample(resampleQuality, beep.SampleRate(clip.SampleRate), e.format.SampleRate, stream)
	}
	buffer := beep.NewBuffer(e.format)
	buffer.Append(stream)

	e.mu.Lock()
	defer e.mu.Unlock()

	if h != e.generation || e.released {
		return SoundHandle{}, ErrEngineReleased
	}
	e.nextSlot++
	e.buffers[e.nextSlot] = buffer
	return SoundHandle{engine: h, slot: e.nextSlot}, nil
}

func (e *mixerEngine) bufferLocked(h EngineHandle, s SoundHandle) (*beep.Buffer, error) {
	if h != e.generation || e.released {
		return nil, ErrEngineReleased
	}
	if s.engine != h {
		return nil, ErrInvalidHandle
	}
	buffer, ok := e.buffers[s.slot]
	if !ok {
		return nil, ErrInvalidHandle
	}
	return buffer, nil
}

// play queues s on the mixer and returns immediately
func (e *mixerEngine) play(h EngineHandle, s SoundHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	buffer, err := e.bufferLocked(h, s)
	if err != nil {
		return err
	}
	e.mixer.Add(buffer.Streamer(0, buffer.Len()))
	return nil
}

// loop queues s repeating forever behind a Ctrl the returned voice can cut
func (e *mixerEngine) loop(h EngineHandle, s SoundHandle) (Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buffer, err := e.bufferLocked(h, s)
	if err != nil {
		return nil, err
	}
	ctrl := &beep.Ctrl{Streamer: beep.Loop(-1, buffer.Streamer(0, buffer.Len()))}
	e.mixer.Add(ctrl)
	return &mixerVoice{engine: e, ctrl: ctrl}, nil
}

// voices returns the number of streams currently on the mixer
func (e *mixerEngine) voices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mixer == nil || e.released {
		return 0
	}
	return e.mixer.Len()
}

// Stream renders the mixer, or silence while no generation is live
func (e *mixerEngine) Stream(samples [][2]float64) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.released || e.mixer == nil {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}
	return e.mixer.Stream(samples)
}

func (e *mixerEngine) Err() error {
	return nil
}

type mixerVoice struct {
	engine *mixerEngine
	ctrl   *beep.Ctrl
	once   sync.Once
}

// Stop detaches the loop; the mixer drops a Ctrl with no streamer
func (v *mixerVoice) Stop() {
	v.once.Do(func() {
		v.engine.mu.Lock()
		v.ctrl.Streamer = nil
		v.engine.mu.Unlock()
	})
}

// encodeFloat32LE writes stereo frames as interleaved little-endian float32
func encodeFloat32LE(dst []byte, frames [][2]float64) int {
	n := 0
	for _, frame := range frames {
		if n+8 > len(dst) {
			break
		}
		binary.LittleEndian.PutUint32(dst[n:], math.Float32bits(float32(frame[0])))
		binary.LittleEndian.PutUint32(dst[n+4:], math.Float32bits(float32(frame[1])))
		n += 8
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n
}

// streamReader adapts a beep.Streamer to the float32 byte stream device players read
type streamReader struct {
	streamer beep.Streamer
	frames   [][2]float64
}

func newStreamReader(s beep.Streamer) *streamReader {
	return &streamReader{streamer: s}
}

func (r *streamReader) Read(p []byte) (int, error) {
	count := len(p) / 8
	if count == 0 {
		return 0, nil
	}
	if cap(r.frames) < count {
		r.frames = make([][2]float64, count)
	}
	frames := r.frames[:count]

	n, ok := r.streamer.Stream(frames)
	if !ok && n == 0 {
		return 0, io.EOF
	}
	return encodeFloat32LE(p[:n*8], frames[:n]), nil
}
