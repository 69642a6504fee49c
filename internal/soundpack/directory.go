package soundpack

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"snakesound.click/internal/audio"
)

// musicBaseNames mark the background track in a scanned directory
var musicBaseNames = []string{"music", "theme", "background"}

// LoadDirectory builds a catalog from file names. "<id>.<ext>" and
// "<id>-<label>.<ext>" become sounds; music.*, theme.* or background.*
// becomes the music track. Files with unknown extensions are skipped.
func LoadDirectory(fs afero.Fs, dir string) (*Soundpack, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, &Error{Path: dir, Err: err}
	}

	sounds := make(map[audio.SoundID]audio.AssetRef)
	var music audio.AssetRef

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !knownExtension(ext) {
			slog.Debug("skipping non-audio file", "dir", dir, "file", name)
			continue
		}

		base := strings.TrimSuffix(name, filepath.Ext(name))
		if isMusicName(base) {
			if music == "" {
				music = audio.AssetRef(name)
			}
			continue
		}

		idPart := base
		if i := strings.IndexByte(base, '-'); i >= 0 {
			idPart = base[:i]
		}
		id, err := strconv.Atoi(idPart)
		if err != nil {
			slog.Debug("skipping file without numeric id", "dir", dir, "file", name)
			continue
		}
		if existing, ok := sounds[audio.SoundID(id)]; ok {
			return nil, &Error{Path: dir, Err: fmt.Errorf("sound id %d used by both %s and %s", id, existing, name)}
		}
		sounds[audio.SoundID(id)] = audio.AssetRef(name)
	}

	if len(sounds) == 0 {
		return nil, &Error{Path: dir, Err: ErrEmptyCatalog}
	}

	slog.Info("soundpack scanned",
		"name", filepath.Base(dir),
		"dir", dir,
		"sounds", len(sounds),
		"has_music", music != "")

	return &Soundpack{
		Name:    filepath.Base(dir),
		Type:    "directory",
		Dir:     dir,
		Catalog: audio.Catalog{Sounds: sounds, Music: music},
	}, nil
}

func knownExtension(ext string) bool {
	for _, known := range audio.DefaultExtensions {
		if ext == known {
			return true
		}
	}
	return ext == ".aif" || ext == ".oga"
}

func isMusicName(base string) bool {
	lower := strings.ToLower(base)
	for _, name := range musicBaseNames {
		if lower == name {
			return true
		}
	}
	return false
}
