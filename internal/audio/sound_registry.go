package audio

import (
	"errors"
	"log/slog"
	"sort"
)

// SoundRegistry maps sound ids to engine-loaded handles. Loads are
// all-or-nothing: a failed Load leaves the previous contents untouched.
type SoundRegistry struct {
	handles map[SoundID]SoundHandle
}

// NewSoundRegistry returns an empty registry
func NewSoundRegistry() *SoundRegistry {
	return &SoundRegistry{handles: map[SoundID]SoundHandle{}}
}

// Load resolves every entry of catalog through load. Entries are loaded in
// id order so failures are reported deterministically.
func (r *SoundRegistry) Load(catalog map[SoundID]AssetRef, load func(AssetRef) (SoundHandle, error)) error {
	ids := make([]SoundID, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	staged := make(map[SoundID]SoundHandle, len(catalog))
	for _, id := range ids {
		ref := catalog[id]
		h, err := load(ref)
		if err != nil {
			slog.Error("sound load failed", "sound_id", int(id), "asset", string(ref), "error", err)
			var initErr *InitError
			if errors.As(err, &initErr) {
				return initErr
			}
			return &InitError{Asset: ref, Err: err}
		}
		staged[id] = h
	}

	r.handles = staged
	slog.Debug("sound registry loaded", "sounds", len(staged))
	return nil
}

// Get returns the handle for id
func (r *SoundRegistry) Get(id SoundID) (SoundHandle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

func (r *SoundRegistry) Len() int {
	return len(r.handles)
}

// IDs returns the loaded ids in ascending order
func (r *SoundRegistry) IDs() []SoundID {
	ids := make([]SoundID, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clear drops every handle. Only teardown calls it.
func (r *SoundRegistry) Clear() {
	r.handles = map[SoundID]SoundHandle{}
}
