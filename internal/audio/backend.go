package audio

// EngineHandle identifies one acquisition of a platform engine.
// Handles from earlier acquisitions stay released forever.
type EngineHandle uint64

// SoundHandle is an engine-loaded clip. It is only valid while the engine
// generation that produced it is active.
type SoundHandle struct {
	engine EngineHandle
	slot   uint64
}

// Engine returns the engine generation that owns the handle
func (h SoundHandle) Engine() EngineHandle {
	return h.engine
}

// IsZero reports whether the handle was never assigned
func (h SoundHandle) IsZero() bool {
	return h.engine == 0 && h.slot == 0
}

// Voice is a running looped playback that can be stopped synchronously
type Voice interface {
	Stop()
}

// Platform is the capability set of an underlying audio engine.
// Implementations own the device; everything above only sees handles.
//
// Release may also happen asynchronously (device lost, OS reclaim); IsReleased
// must report it from then on.
type Platform interface {
	// Acquire creates a new engine instance
	Acquire() (EngineHandle, error)

	// IsReleased reports whether the engine instance is no longer usable
	IsReleased(h EngineHandle) bool

	// DecodeAndLoad decodes an asset and makes it playable on the engine
	DecodeAndLoad(h EngineHandle, ref AssetRef) (SoundHandle, error)

	// PlaySound starts one-shot playback and returns without waiting for it
	PlaySound(h EngineHandle, s SoundHandle) error

	// LoopSound plays s repeatedly until the returned Voice is stopped
	LoopSound(h EngineHandle, s SoundHandle) (Voice, error)

	// Release frees the engine instance. Releasing twice is a no-op.
	Release(h EngineHandle) error

	// Name identifies the implementation in logs
	Name() string
}
