package config

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

const appDir = "snakesound"

// XDGDirs provides XDG Base Directory compliant paths for snakesound
type XDGDirs struct {
	fs afero.Fs
}

// NewXDGDirs creates an XDG directory manager on the OS filesystem
func NewXDGDirs() *XDGDirs {
	return NewXDGDirsWithFilesystem(afero.NewOsFs())
}

// NewXDGDirsWithFilesystem creates an XDG directory manager that checks
// and creates directories through fs
func NewXDGDirsWithFilesystem(fs afero.Fs) *XDGDirs {
	return &XDGDirs{fs: fs}
}

// GetSoundpackPaths returns prioritized paths where soundpacks can be found:
// user data dir first, then system data dirs
func (x *XDGDirs) GetSoundpackPaths(soundpackID string) []string {
	var paths []string

	baseDir := filepath.Join(appDir, "soundpacks")
	if soundpackID != "" {
		baseDir = filepath.Join(baseDir, soundpackID)
	}

	paths = append(paths, filepath.Join(xdg.DataHome, baseDir))
	for _, dataDir := range xdg.DataDirs {
		paths = append(paths, filepath.Join(dataDir, baseDir))
	}

	slog.Debug("generated soundpack paths",
		"soundpack_id", soundpackID,
		"total_paths", len(paths))

	return paths
}

// GetCachePath returns the cache directory path for a specific purpose
func (x *XDGDirs) GetCachePath(purpose string) string {
	baseDir := appDir
	if purpose != "" {
		baseDir = filepath.Join(baseDir, purpose)
	}
	return filepath.Join(xdg.CacheHome, baseDir)
}

// GetConfigPaths returns prioritized paths where config files can be found:
// user config dir first, then system config dirs
func (x *XDGDirs) GetConfigPaths(filename string) []string {
	var paths []string

	userConfigPath := filepath.Join(xdg.ConfigHome, appDir)
	if filename != "" {
		userConfigPath = filepath.Join(userConfigPath, filename)
	}
	paths = append(paths, userConfigPath)

	for _, configDir := range xdg.ConfigDirs {
		systemConfigPath := filepath.Join(configDir, appDir)
		if filename != "" {
			systemConfigPath = filepath.Join(systemConfigPath, filename)
		}
		paths = append(paths, systemConfigPath)
	}

	return paths
}

// CreateCacheDir creates the cache directory for a specific purpose
func (x *XDGDirs) CreateCacheDir(purpose string) error {
	cachePath := x.GetCachePath(purpose)

	if err := x.fs.MkdirAll(cachePath, 0755); err != nil {
		slog.Error("failed to create cache directory", "path", cachePath, "error", err)
		return err
	}

	slog.Debug("cache directory ready", "path", cachePath)
	return nil
}

// FindSoundpack searches the soundpack directories for soundpackID. A
// directory or a <id>.json catalog both count. Returns the first match, or
// empty string if not found.
func (x *XDGDirs) FindSoundpack(soundpackID string) string {
	soundpackID = sanitizePath(soundpackID)
	if soundpackID == "" {
		return ""
	}

	for i, basePath := range x.GetSoundpackPaths("") {
		for _, candidate := range []string{
			filepath.Join(basePath, soundpackID),
			filepath.Join(basePath, soundpackID+".json"),
		} {
			if _, err := x.fs.Stat(candidate); err == nil {
				slog.Info("soundpack found",
					"soundpack_id", soundpackID,
					"full_path", candidate,
					"path_index", i)
				return candidate
			}
		}
	}

	slog.Debug("soundpack not found in any path", "soundpack_id", soundpackID)
	return ""
}

// sanitizePath removes dangerous path components and normalizes the path
func sanitizePath(path string) string {
	path = strings.ReplaceAll(path, "\x00", "")
	path = strings.ReplaceAll(path, "\n", "")
	path = strings.ReplaceAll(path, "\r", "")

	if path == "" {
		return ""
	}

	path = filepath.Clean(path)

	// Prevent directory traversal
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "..") || strings.Contains(path, "../") {
		slog.Warn("rejecting potentially dangerous path", "path", path)
		return ""
	}

	return path
}
