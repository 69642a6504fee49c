package audio

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultExtensions is the lookup order for assets referenced without an extension
var DefaultExtensions = []string{".wav", ".ogg", ".mp3", ".aiff"}

// FileResolver finds asset files on a filesystem, trying known extensions
// for references that omit one
type FileResolver struct {
	fs         afero.Fs
	extensions []string
}

// NewFileResolver creates a resolver over fs with extensions in priority order
func NewFileResolver(fs afero.Fs, extensions []string) *FileResolver {
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &FileResolver{fs: fs, extensions: normalized}
}

// Resolve returns path if it exists, otherwise the first path+ext that does.
// Extensions are only tried when path has none of its own.
func (f *FileResolver) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("asset path cannot be empty")
	}

	if ok, _ := afero.Exists(f.fs, path); ok {
		return path, nil
	}

	if filepath.Ext(path) != "" {
		return "", fmt.Errorf("asset not found: %s", path)
	}

	for _, ext := range f.extensions {
		candidate := path + ext
		if ok, _ := afero.Exists(f.fs, candidate); ok {
			slog.Debug("asset resolved by extension", "base_path", path, "resolved_path", candidate)
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no file found for %s with extensions %v", path, f.extensions)
}

// Extensions returns the extensions tried, in priority order
func (f *FileResolver) Extensions() []string {
	return f.extensions
}
