package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
)

// ClipLoader turns an asset reference into decoded audio
type ClipLoader interface {
	LoadClip(ref AssetRef) (*Clip, error)
}

// AssetLoader reads assets through an afero filesystem and decodes them
type AssetLoader struct {
	fs       afero.Fs
	root     string
	resolver *FileResolver
	decoders *DecoderRegistry
}

// NewAssetLoader creates a loader resolving relative refs against root
func NewAssetLoader(fs afero.Fs, root string, decoders *DecoderRegistry) *AssetLoader {
	if decoders == nil {
		decoders = NewDefaultRegistry()
	}
	return &AssetLoader{
		fs:       fs,
		root:     root,
		resolver: NewFileResolver(fs, DefaultExtensions),
		decoders: decoders,
	}
}

// LoadClip resolves, reads and decodes ref
func (l *AssetLoader) LoadClip(ref AssetRef) (*Clip, error) {
	path := string(ref)
	if path == "" {
		return nil, fmt.Errorf("empty asset reference")
	}
	if !filepath.IsAbs(path) && l.root != "" {
		path = filepath.Join(l.root, path)
	}

	resolved, err := l.resolver.Resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := l.fs.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	defer file.Close()

	clip, err := l.decoders.Decode(resolved, file)
	if err != nil {
		return nil, err
	}

	slog.Debug("asset loaded", "ref", string(ref), "path", resolved, "frames", clip.Frames())
	return clip, nil
}
