package soundpack

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"

	"snakesound.click/internal/audio"
)

// catalogFile is the on-disk catalog shape, shared by JSON and YAML:
//
//	{"name":"snake","sounds":{"1":"beep.wav"},"music":"theme.ogg"}
type catalogFile struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Sounds      map[string]string `json:"sounds" yaml:"sounds"`
	Music       string            `json:"music,omitempty" yaml:"music,omitempty"`
}

// LoadJSON reads a JSON catalog; refs resolve against the file's directory
func LoadJSON(fs afero.Fs, path string) (*Soundpack, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	pack, err := ParseJSON(data, filepath.Dir(path))
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	slog.Info("soundpack loaded",
		"name", pack.Name,
		"type", pack.Type,
		"path", path,
		"sounds", len(pack.Catalog.Sounds),
		"has_music", pack.Catalog.Music != "")
	return pack, nil
}

// ParseJSON decodes catalog bytes with dir as the asset root
func ParseJSON(data []byte, dir string) (*Soundpack, error) {
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog JSON: %w", err)
	}
	return file.soundpack(dir, "json")
}

// soundpack validates the decoded file and turns it into a Soundpack
func (file catalogFile) soundpack(dir, packType string) (*Soundpack, error) {
	if len(file.Sounds) == 0 {
		return nil, ErrEmptyCatalog
	}

	sounds := make(map[audio.SoundID]audio.AssetRef, len(file.Sounds))
	for key, ref := range file.Sounds {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSoundID, key)
		}
		if ref == "" {
			return nil, fmt.Errorf("sound %d has an empty asset path", id)
		}
		sounds[audio.SoundID(id)] = audio.AssetRef(ref)
	}

	name := file.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	return &Soundpack{
		Name: name,
		Type: packType,
		Dir:  dir,
		Catalog: audio.Catalog{
			Sounds: sounds,
			Music:  audio.AssetRef(file.Music),
		},
	}, nil
}

// MarshalJSON renders a soundpack back to the catalog file format
func (s *Soundpack) MarshalJSON() ([]byte, error) {
	file := catalogFile{
		Name:   s.Name,
		Sounds: make(map[string]string, len(s.Catalog.Sounds)),
		Music:  string(s.Catalog.Music),
	}
	for id, ref := range s.Catalog.Sounds {
		file.Sounds[strconv.Itoa(int(id))] = string(ref)
	}
	return json.MarshalIndent(file, "", "  ")
}
