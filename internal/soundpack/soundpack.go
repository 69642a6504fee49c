package soundpack

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"snakesound.click/internal/audio"
)

// CatalogFileName is looked up inside a directory before scanning it
const CatalogFileName = "catalog.json"

var (
	ErrInvalidSoundID = errors.New("sound id must be an integer")
	ErrEmptyCatalog   = errors.New("catalog defines no sounds")
	ErrNotFound       = errors.New("soundpack not found")
)

// Soundpack is a loaded asset catalog plus the directory its refs resolve against
type Soundpack struct {
	Name    string
	Type    string // "json" or "directory"
	Dir     string
	Catalog audio.Catalog
}

// Error reports a catalog that could not be read or parsed
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("soundpack %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FileNotFoundError lists catalog assets missing from disk
type FileNotFoundError struct {
	SoundPath string
	Paths     []string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("sound file not found: %s (searched in: %s)", e.SoundPath, strings.Join(e.Paths, ", "))
}

// IsFileNotFoundError checks if an error is a FileNotFoundError
func IsFileNotFoundError(err error) bool {
	var target *FileNotFoundError
	return errors.As(err, &target)
}

// Open loads a soundpack from path. A .yaml or .yml file is read as a YAML
// catalog and any other file as JSON. A directory uses its catalog.json or
// catalog.yaml when present and is scanned otherwise.
func Open(fs afero.Fs, path string) (*Soundpack, error) {
	if path == "" {
		return nil, &Error{Path: path, Err: fmt.Errorf("path cannot be empty")}
	}

	info, err := fs.Stat(path)
	if err != nil {
		slog.Debug("soundpack path not found", "path", path, "error", err)
		return nil, &Error{Path: path, Err: fmt.Errorf("%w: %v", ErrNotFound, err)}
	}

	if !info.IsDir() {
		return loadCatalogFile(fs, path)
	}

	for _, name := range []string{CatalogFileName, YAMLCatalogFileName} {
		catalogPath := filepath.Join(path, name)
		if ok, _ := afero.Exists(fs, catalogPath); ok {
			return loadCatalogFile(fs, catalogPath)
		}
	}
	return LoadDirectory(fs, path)
}

func loadCatalogFile(fs afero.Fs, path string) (*Soundpack, error) {
	if isYAMLFile(path) {
		return LoadYAML(fs, path)
	}
	return LoadJSON(fs, path)
}

// Refs returns sound ids in ascending order with their asset refs
func (s *Soundpack) Refs() ([]audio.SoundID, map[audio.SoundID]audio.AssetRef) {
	ids := make([]audio.SoundID, 0, len(s.Catalog.Sounds))
	for id := range s.Catalog.Sounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, s.Catalog.Sounds
}

// AssetPath resolves ref against the soundpack directory
func (s *Soundpack) AssetPath(ref audio.AssetRef) string {
	p := string(ref)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// Validate checks that every asset exists, trying the default extensions
// for refs without one. All missing assets are reported together.
func (s *Soundpack) Validate(fs afero.Fs) error {
	resolver := audio.NewFileResolver(fs, audio.DefaultExtensions)

	refs := make([]audio.AssetRef, 0, len(s.Catalog.Sounds)+1)
	ids, sounds := s.Refs()
	for _, id := range ids {
		refs = append(refs, sounds[id])
	}
	if s.Catalog.Music != "" {
		refs = append(refs, s.Catalog.Music)
	}

	var errs []error
	for _, ref := range refs {
		path := s.AssetPath(ref)
		if _, err := resolver.Resolve(path); err != nil {
			candidates := []string{path}
			if filepath.Ext(path) == "" {
				candidates = candidates[:0]
				for _, ext := range resolver.Extensions() {
					candidates = append(candidates, path+ext)
				}
			}
			errs = append(errs, &FileNotFoundError{SoundPath: string(ref), Paths: candidates})
		}
	}

	if len(errs) > 0 {
		slog.Warn("soundpack has missing assets", "name", s.Name, "missing", len(errs))
		return errors.Join(errs...)
	}
	return nil
}
