package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG cache path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// Config represents snakesound configuration
type Config struct {
	Enabled          bool                 `json:"enabled"`           // Initial sound-enabled flag
	AudioBackend     string               `json:"audio_backend"`     // auto, malgo, beep, oto, silent
	SampleRate       int                  `json:"sample_rate"`       // Engine sample rate in Hz
	CatalogPath      string               `json:"catalog_path"`      // Catalog file, pack directory or soundpack id
	LogLevel         string               `json:"log_level"`         // debug, info, warn, error
	AutoReinitialize bool                 `json:"auto_reinitialize"` // Rebuild a released engine on play
	FileLogging      *FileLoggingConfig   `json:"file_logging,omitempty"`
	Tracking         *SoundTrackingConfig `json:"tracking,omitempty"`
}

const configFileName = "config.json"

var supportedAudioBackends = []string{"auto", "malgo", "beep", "oto", "silent"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetSoundpackPaths(soundpackID string) []string
	GetCachePath(purpose string) string
	CreateCacheDir(purpose string) error
	FindSoundpack(soundpackID string) string
}

// ConfigManager handles loading, saving, and validating configuration
type ConfigManager struct {
	fs  afero.Fs
	xdg XDGInterface
}

// NewConfigManager creates a configuration manager on the OS filesystem
func NewConfigManager() *ConfigManager {
	return NewConfigManagerWithFilesystem(afero.NewOsFs())
}

// NewConfigManagerWithFilesystem creates a configuration manager that does
// all file access through fs
func NewConfigManagerWithFilesystem(fs afero.Fs) *ConfigManager {
	slog.Debug("creating new config manager")
	return &ConfigManager{
		fs:  fs,
		xdg: NewXDGDirsWithFilesystem(fs),
	}
}

// GetDefaultConfig returns the default configuration
func (cm *ConfigManager) GetDefaultConfig() *Config {
	defaultConfig := &Config{
		Enabled:          true,
		AudioBackend:     "auto",
		SampleRate:       44100,
		CatalogPath:      "default",
		LogLevel:         "warn",
		AutoReinitialize: false,
		FileLogging: &FileLoggingConfig{
			Enabled:    false,
			Filename:   "", // Empty = XDG cache path
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Tracking: GetDefaultSoundTrackingConfig(),
	}

	slog.Debug("generated default config",
		"enabled", defaultConfig.Enabled,
		"audio_backend", defaultConfig.AudioBackend,
		"sample_rate", defaultConfig.SampleRate,
		"catalog_path", defaultConfig.CatalogPath,
		"log_level", defaultConfig.LogLevel)

	return defaultConfig
}

// LoadFromFile loads configuration from a specific file. Fields missing
// from the file keep their default values.
func (cm *ConfigManager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := afero.ReadFile(cm.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := cm.GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cm.ValidateConfig(config); err != nil {
		return nil, err
	}

	slog.Debug("config loaded successfully",
		"file_path", filePath,
		"audio_backend", config.AudioBackend,
		"catalog_path", config.CatalogPath,
		"enabled", config.Enabled)

	return config, nil
}

// SaveToFile saves configuration to a specific file
func (cm *ConfigManager) SaveToFile(config *Config, filePath string) error {
	slog.Debug("saving config to file", "file_path", filePath)

	if err := cm.ValidateConfig(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err := cm.fs.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create config directory", "directory", dir, "error", err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(cm.fs, filePath, data, 0644); err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved successfully", "file_path", filePath)
	return nil
}

// LoadConfig loads the first config file found through XDG discovery, or
// the defaults when there is none
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	configPaths := cm.xdg.GetConfigPaths(configFileName)

	slog.Debug("searching for config file", "paths", configPaths)

	for i, configPath := range configPaths {
		if _, err := cm.fs.Stat(configPath); err == nil {
			slog.Debug("found config file", "path_index", i, "path", configPath)
			return cm.LoadFromFile(configPath)
		}
	}

	slog.Debug("no config file found, using defaults")
	return cm.GetDefaultConfig(), nil
}

// ValidateConfig validates configuration values, reporting every problem
// found in one error
func (cm *ConfigManager) ValidateConfig(config *Config) error {
	var errors []string

	if !cm.IsValidAudioBackend(config.AudioBackend) {
		errors = append(errors, fmt.Sprintf("invalid audio backend '%s', must be one of: %s",
			config.AudioBackend, strings.Join(cm.GetSupportedAudioBackends(), ", ")))
	}

	if config.SampleRate < 0 || (config.SampleRate > 0 && config.SampleRate < 8000) || config.SampleRate > 192000 {
		errors = append(errors, fmt.Sprintf("sample_rate must be between 8000 and 192000, got %d", config.SampleRate))
	}

	if config.LogLevel != "" && !isValidLogLevel(config.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s', must be one of: %s",
			config.LogLevel, strings.Join(validLogLevels, ", ")))
	}

	if fileLogging := config.FileLogging; fileLogging != nil {
		if fileLogging.MaxSizeMB < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_size_mb must be >= 0, got %d", fileLogging.MaxSizeMB))
		}
		if fileLogging.MaxBackups < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_backups must be >= 0, got %d", fileLogging.MaxBackups))
		}
		if fileLogging.MaxAgeDays < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_age_days must be >= 0, got %d", fileLogging.MaxAgeDays))
		}
	}

	if len(errors) > 0 {
		errMsg := strings.Join(errors, "; ")
		slog.Error("config validation failed", "errors", errMsg)
		return fmt.Errorf("config validation failed: %s", errMsg)
	}

	return nil
}

// MergeConfigs merges two configurations, with override taking precedence
// for every non-zero field. Booleans have no unset value, so Enabled and
// AutoReinitialize always come from override; LoadOverrideFile seeds them
// from base.
func (cm *ConfigManager) MergeConfigs(base, override *Config) *Config {
	merged := *base

	merged.Enabled = override.Enabled
	merged.AutoReinitialize = override.AutoReinitialize

	if override.AudioBackend != "" {
		merged.AudioBackend = override.AudioBackend
	}
	if override.SampleRate != 0 {
		merged.SampleRate = override.SampleRate
	}
	if override.CatalogPath != "" {
		merged.CatalogPath = override.CatalogPath
	}
	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
	}
	if override.FileLogging != nil {
		merged.FileLogging = override.FileLogging
	}
	if override.Tracking != nil {
		merged.Tracking = override.Tracking
	}

	return &merged
}

// LoadOverrideFile reads a config file meant to be merged over base. Scalar
// fields the file omits stay zero; booleans and the nested file_logging and
// tracking sections start from base, so a partial section only changes the
// keys it names.
func (cm *ConfigManager) LoadOverrideFile(filePath string, base *Config) (*Config, error) {
	slog.Debug("loading config override", "file_path", filePath)

	data, err := afero.ReadFile(cm.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	override := &Config{
		Enabled:          base.Enabled,
		AutoReinitialize: base.AutoReinitialize,
	}
	if base.FileLogging != nil {
		fileLogging := *base.FileLogging
		override.FileLogging = &fileLogging
	}
	if base.Tracking != nil {
		tracking := *base.Tracking
		override.Tracking = &tracking
	}

	if err := json.Unmarshal(data, override); err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return override, nil
}

// UserConfigPath is where SaveToFile writes when no path is given: the
// first, per-user, discovery location
func (cm *ConfigManager) UserConfigPath() string {
	paths := cm.xdg.GetConfigPaths(configFileName)
	if len(paths) == 0 {
		return configFileName
	}
	return paths[0]
}

// ApplyEnvironmentOverrides applies SNAKESOUND_* environment variables,
// ignoring values that do not parse
func (cm *ConfigManager) ApplyEnvironmentOverrides(config *Config) *Config {
	slog.Debug("applying environment variable overrides")

	result := *config

	if enabledStr := os.Getenv("SNAKESOUND_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied enabled override from environment", "value", enabled)
		} else {
			slog.Warn("invalid SNAKESOUND_ENABLED environment variable", "value", enabledStr, "error", err)
		}
	}

	if audioBackend := os.Getenv("SNAKESOUND_AUDIO_BACKEND"); audioBackend != "" {
		if cm.IsValidAudioBackend(audioBackend) {
			result.AudioBackend = audioBackend
			slog.Debug("applied audio backend override from environment", "value", audioBackend)
		} else {
			slog.Warn("invalid SNAKESOUND_AUDIO_BACKEND environment variable", "value", audioBackend)
		}
	}

	if logLevel := os.Getenv("SNAKESOUND_LOG_LEVEL"); logLevel != "" {
		result.LogLevel = logLevel
		slog.Debug("applied log level override from environment", "value", logLevel)
	}

	if catalog := os.Getenv("SNAKESOUND_CATALOG"); catalog != "" {
		result.CatalogPath = catalog
		slog.Debug("applied catalog override from environment", "value", catalog)
	}

	if rateStr := os.Getenv("SNAKESOUND_SAMPLE_RATE"); rateStr != "" {
		if rate, err := strconv.Atoi(rateStr); err == nil && rate > 0 {
			result.SampleRate = rate
			slog.Debug("applied sample rate override from environment", "value", rate)
		} else {
			slog.Warn("invalid SNAKESOUND_SAMPLE_RATE environment variable", "value", rateStr)
		}
	}

	if result.Tracking != nil {
		result.Tracking = ApplySoundTrackingEnvironmentOverrides(result.Tracking)
	}

	return &result
}

// ParseLogLevel maps a config log level to a slog level
func ParseLogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level '%s', must be one of: %s", logLevel, strings.Join(validLogLevels, ", "))
}

// ResolveLogFilePath resolves the log file path using the XDG cache directory when filename is empty
func (cm *ConfigManager) ResolveLogFilePath(filename string) string {
	if filename != "" {
		return filename
	}
	return filepath.Join(cm.xdg.GetCachePath("logs"), "snakesound.log")
}

// ResolveDatabasePath resolves the tracking database path using the XDG cache directory when path is empty
func (cm *ConfigManager) ResolveDatabasePath(path string) string {
	if path != "" {
		return path
	}
	return filepath.Join(cm.xdg.GetCachePath(""), "playback.db")
}

// ResolveCatalogPath turns a configured catalog into a path. Anything that
// exists on the filesystem is used as is; otherwise it is looked up as a
// soundpack id under the XDG data directories.
func (cm *ConfigManager) ResolveCatalogPath(catalog string) (string, error) {
	if catalog == "" {
		return "", fmt.Errorf("no catalog configured")
	}

	if _, err := cm.fs.Stat(catalog); err == nil {
		return catalog, nil
	}

	if found := cm.xdg.FindSoundpack(catalog); found != "" {
		return found, nil
	}

	return "", fmt.Errorf("catalog '%s' not found as a path or in soundpack directories %v",
		catalog, cm.xdg.GetSoundpackPaths(""))
}

// GetSupportedAudioBackends returns a list of all supported audio backend types
func (cm *ConfigManager) GetSupportedAudioBackends() []string {
	backends := make([]string, len(supportedAudioBackends))
	copy(backends, supportedAudioBackends)
	return backends
}

// IsValidAudioBackend checks if an audio backend type is supported
func (cm *ConfigManager) IsValidAudioBackend(backend string) bool {
	// Empty string is valid (defaults to auto)
	if backend == "" {
		return true
	}
	for _, supported := range supportedAudioBackends {
		if backend == supported {
			return true
		}
	}
	return false
}

func isValidLogLevel(level string) bool {
	for _, valid := range validLogLevels {
		if level == valid {
			return true
		}
	}
	return false
}
