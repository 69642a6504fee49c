package soundpack

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// YAMLCatalogFileName is tried after catalog.json inside a directory
const YAMLCatalogFileName = "catalog.yaml"

// LoadYAML reads a YAML catalog:
//
//	name: snake
//	sounds:
//	  1: beep.wav
//	  2: boom.mp3
//	music: theme.ogg
func LoadYAML(fs afero.Fs, path string) (*Soundpack, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	pack, err := ParseYAML(data, filepath.Dir(path))
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

// ParseYAML decodes YAML catalog bytes with dir as the asset root
func ParseYAML(data []byte, dir string) (*Soundpack, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid catalog YAML: %w", err)
	}
	return file.soundpack(dir, "yaml")
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
