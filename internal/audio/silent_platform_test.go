package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSilentPlatform(t *testing.T) {
	platform := NewSilentPlatform(&fakeLoader{}, 44100)
	var _ Platform = platform
	assert.Equal(t, "silent", platform.Name())

	h, err := platform.Acquire()
	require.NoError(t, err)
	assert.False(t, platform.IsReleased(h))

	s, err := platform.DecodeAndLoad(h, "beep")
	require.NoError(t, err)
	require.NoError(t, platform.PlaySound(h, s))
	require.NoError(t, platform.PlaySound(h, s))

	voice, err := platform.LoopSound(h, s)
	require.NoError(t, err)
	assert.Equal(t, SilentStats{Plays: 2, Loops: 1, ActiveLoops: 1}, platform.Stats())

	voice.Stop()
	voice.Stop()
	assert.Equal(t, 0, platform.Stats().ActiveLoops)

	require.NoError(t, platform.Release(h))
	require.NoError(t, platform.Release(h))
	assert.True(t, platform.IsReleased(h))
	assert.Error(t, platform.PlaySound(h, s))
}

func TestSilentPlatformSimulateRelease(t *testing.T) {
	loader := &fakeLoader{}
	platform := NewSilentPlatform(loader, 44100)
	m := NewAudioManager(platform, Catalog{
		Sounds: map[SoundID]AssetRef{1: "beep", 2: "boom"},
		Music:  "theme",
	})
	require.NoError(t, m.InitSounds())
	require.NoError(t, m.PlayBackgroundMusic())
	require.NoError(t, m.Play(1))

	platform.SimulateRelease()
	assert.True(t, m.IsMspReleased())
	assert.Equal(t, 0, platform.Stats().ActiveLoops)

	require.NoError(t, m.Play(2))
	assert.Equal(t, 1, platform.Stats().Plays)

	require.NoError(t, m.Reinitialize())
	require.NoError(t, m.Play(2))
	assert.Equal(t, 2, platform.Stats().Plays)
	assert.Equal(t, MusicLoaded, m.MusicState())
}
