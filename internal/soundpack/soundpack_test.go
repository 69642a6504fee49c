package soundpack

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakesound.click/internal/audio"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestParseJSON(t *testing.T) {
	testCases := []struct {
		name    string
		data    string
		wantErr error
		check   func(t *testing.T, pack *Soundpack)
	}{
		{
			name: "full catalog",
			data: `{"name":"snake","sounds":{"1":"beep.wav","2":"boom.mp3"},"music":"theme.ogg"}`,
			check: func(t *testing.T, pack *Soundpack) {
				assert.Equal(t, "snake", pack.Name)
				assert.Equal(t, "json", pack.Type)
				assert.Equal(t, audio.AssetRef("beep.wav"), pack.Catalog.Sounds[1])
				assert.Equal(t, audio.AssetRef("boom.mp3"), pack.Catalog.Sounds[2])
				assert.Equal(t, audio.AssetRef("theme.ogg"), pack.Catalog.Music)
			},
		},
		{
			name: "music is optional and name defaults to dir",
			data: `{"sounds":{"7":"click.wav"}}`,
			check: func(t *testing.T, pack *Soundpack) {
				assert.Equal(t, "packs", pack.Name)
				assert.Empty(t, pack.Catalog.Music)
			},
		},
		{
			name:    "non-integer id",
			data:    `{"sounds":{"one":"beep.wav"}}`,
			wantErr: ErrInvalidSoundID,
		},
		{
			name:    "no sounds",
			data:    `{"name":"empty","sounds":{}}`,
			wantErr: ErrEmptyCatalog,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pack, err := ParseJSON([]byte(tc.data), "/data/packs")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, pack)
		})
	}

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := ParseJSON([]byte(`{"sounds":`), "/x")
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/packs/snake.json", `{"name":"snake","sounds":{"1":"sfx/beep.wav"}}`)
	writeFile(t, fs, "/packs/withcatalog/catalog.json", `{"name":"inner","sounds":{"3":"x.wav"}}`)
	writeFile(t, fs, "/packs/scan/1.wav", "")
	writeFile(t, fs, "/packs/scan/2-boom.ogg", "")
	writeFile(t, fs, "/packs/scan/theme.ogg", "")
	writeFile(t, fs, "/packs/scan/readme.txt", "")
	writeFile(t, fs, "/packs/scan/extra.wav", "")

	t.Run("json file", func(t *testing.T) {
		pack, err := Open(fs, "/packs/snake.json")
		require.NoError(t, err)
		assert.Equal(t, "/packs", pack.Dir)
		assert.Equal(t, "/packs/sfx/beep.wav", pack.AssetPath(pack.Catalog.Sounds[1]))
	})

	t.Run("directory with catalog file", func(t *testing.T) {
		pack, err := Open(fs, "/packs/withcatalog")
		require.NoError(t, err)
		assert.Equal(t, "inner", pack.Name)
		assert.Equal(t, "/packs/withcatalog", pack.Dir)
	})

	t.Run("scanned directory", func(t *testing.T) {
		pack, err := Open(fs, "/packs/scan")
		require.NoError(t, err)
		assert.Equal(t, "directory", pack.Type)
		assert.Equal(t, "scan", pack.Name)

		ids, sounds := pack.Refs()
		assert.Equal(t, []audio.SoundID{1, 2}, ids)
		assert.Equal(t, audio.AssetRef("1.wav"), sounds[1])
		assert.Equal(t, audio.AssetRef("2-boom.ogg"), sounds[2])
		assert.Equal(t, audio.AssetRef("theme.ogg"), pack.Catalog.Music)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Open(fs, "/nowhere")
		var packErr *Error
		require.ErrorAs(t, err, &packErr)
		assert.Equal(t, "/nowhere", packErr.Path)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestLoadDirectoryDuplicateIDs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/dup/1.wav", "")
	writeFile(t, fs, "/dup/1-again.mp3", "")

	_, err := LoadDirectory(fs, "/dup")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/packs/beep.wav", "")
	writeFile(t, fs, "/packs/theme.ogg", "")

	pack := &Soundpack{
		Name: "snake",
		Dir:  "/packs",
		Catalog: audio.Catalog{
			Sounds: map[audio.SoundID]audio.AssetRef{1: "beep.wav", 2: "theme", 3: "missing.mp3"},
			Music:  "gone",
		},
	}

	err := pack.Validate(fs)
	require.Error(t, err)
	assert.True(t, IsFileNotFoundError(err))
	assert.Contains(t, err.Error(), "missing.mp3")
	assert.Contains(t, err.Error(), "/packs/gone.wav")
	assert.NotContains(t, err.Error(), "beep.wav")

	delete(pack.Catalog.Sounds, 3)
	pack.Catalog.Music = "theme.ogg"
	assert.NoError(t, pack.Validate(fs))
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	pack, err := ParseJSON([]byte(`{"name":"snake","sounds":{"1":"beep.wav"},"music":"theme.ogg"}`), "/p")
	require.NoError(t, err)

	data, err := json.Marshal(pack)
	require.NoError(t, err)

	again, err := ParseJSON(data, "/p")
	require.NoError(t, err)
	assert.Equal(t, pack.Catalog, again.Catalog)
}
