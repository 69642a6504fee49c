package soundpack

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakesound.click/internal/audio"
)

func TestParseYAML(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		wantErr error
		check   func(t *testing.T, pack *Soundpack)
	}{
		{
			name: "full catalog",
			data: "name: snake\nsounds:\n  1: beep.wav\n  2: boom.mp3\nmusic: theme.ogg\n",
			check: func(t *testing.T, pack *Soundpack) {
				assert.Equal(t, "snake", pack.Name)
				assert.Equal(t, "yaml", pack.Type)
				assert.Equal(t, audio.AssetRef("beep.wav"), pack.Catalog.Sounds[1])
				assert.Equal(t, audio.AssetRef("boom.mp3"), pack.Catalog.Sounds[2])
				assert.Equal(t, audio.AssetRef("theme.ogg"), pack.Catalog.Music)
			},
		},
		{
			name: "quoted ids and default name",
			data: "sounds:\n  \"10\": click.wav\n",
			check: func(t *testing.T, pack *Soundpack) {
				assert.Equal(t, "retro", pack.Name)
				assert.Equal(t, audio.AssetRef("click.wav"), pack.Catalog.Sounds[10])
				assert.Empty(t, pack.Catalog.Music)
			},
		},
		{
			name:    "non-integer id",
			data:    "sounds:\n  one: beep.wav\n",
			wantErr: ErrInvalidSoundID,
		},
		{
			name:    "no sounds",
			data:    "name: empty\n",
			wantErr: ErrEmptyCatalog,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pack, err := ParseYAML([]byte(tc.data), "/data/retro")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, pack)
		})
	}

	t.Run("malformed YAML", func(t *testing.T) {
		_, err := ParseYAML([]byte("sounds: [1, 2"), "/x")
		assert.Error(t, err)
	})
}

func TestOpenYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/packs/retro.yml", "name: retro\nsounds:\n  1: sfx/beep.wav\n")
	writeFile(t, fs, "/packs/inner/catalog.yaml", "name: inner\nsounds:\n  4: x.wav\n")
	writeFile(t, fs, "/packs/both/catalog.json", `{"name":"from-json","sounds":{"1":"a.wav"}}`)
	writeFile(t, fs, "/packs/both/catalog.yaml", "name: from-yaml\nsounds:\n  1: a.wav\n")

	t.Run("yml file", func(t *testing.T) {
		pack, err := Open(fs, "/packs/retro.yml")
		require.NoError(t, err)
		assert.Equal(t, "yaml", pack.Type)
		assert.Equal(t, "/packs/sfx/beep.wav", pack.AssetPath(pack.Catalog.Sounds[1]))
	})

	t.Run("directory with yaml catalog", func(t *testing.T) {
		pack, err := Open(fs, "/packs/inner")
		require.NoError(t, err)
		assert.Equal(t, "inner", pack.Name)
		assert.Equal(t, "/packs/inner", pack.Dir)
	})

	t.Run("json catalog wins over yaml", func(t *testing.T) {
		pack, err := Open(fs, "/packs/both")
		require.NoError(t, err)
		assert.Equal(t, "from-json", pack.Name)
	})
}
