package audio

import "fmt"

// SoundID identifies a sound effect in a catalog
type SoundID int

// AssetRef points at an audio asset, usually a path relative to the soundpack root
type AssetRef string

// Catalog is the set of assets a manager loads at init time
type Catalog struct {
	Sounds map[SoundID]AssetRef
	Music  AssetRef // empty when the catalog has no background track
}

// EngineState is the lifecycle state of the platform engine resource
type EngineState int

const (
	EngineUninitialized EngineState = iota
	EngineActive
	EngineReleased
)

func (s EngineState) String() string {
	switch s {
	case EngineUninitialized:
		return "uninitialized"
	case EngineActive:
		return "active"
	case EngineReleased:
		return "released"
	default:
		return fmt.Sprintf("engine_state(%d)", int(s))
	}
}

// MusicState is the state of the background music track
type MusicState int

const (
	MusicNotLoaded MusicState = iota
	MusicLoaded
	MusicPlaying
	MusicStopped
)

func (s MusicState) String() string {
	switch s {
	case MusicNotLoaded:
		return "not_loaded"
	case MusicLoaded:
		return "loaded"
	case MusicPlaying:
		return "playing"
	case MusicStopped:
		return "stopped"
	default:
		return fmt.Sprintf("music_state(%d)", int(s))
	}
}
