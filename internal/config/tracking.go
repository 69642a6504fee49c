package config

import (
	"log/slog"
	"os"
	"strconv"
)

// SoundTrackingConfig represents playback event tracking configuration
type SoundTrackingConfig struct {
	Enabled      bool     `json:"enabled"`         // Whether manager events are recorded
	DatabasePath string   `json:"database_path"`   // Custom database path (empty = XDG cache path)
	Kinds        []string `json:"kinds,omitempty"` // Event kinds to record (empty = all)
}

// GetDefaultSoundTrackingConfig returns the default tracking configuration
func GetDefaultSoundTrackingConfig() *SoundTrackingConfig {
	return &SoundTrackingConfig{
		Enabled:      true,
		DatabasePath: "",
	}
}

// ApplySoundTrackingEnvironmentOverrides applies SNAKESOUND_TRACKING and
// SNAKESOUND_TRACKING_DB
func ApplySoundTrackingEnvironmentOverrides(config *SoundTrackingConfig) *SoundTrackingConfig {
	result := *config

	if trackingStr := os.Getenv("SNAKESOUND_TRACKING"); trackingStr != "" {
		if enabled, err := strconv.ParseBool(trackingStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied tracking override from environment", "value", enabled)
		} else {
			slog.Warn("invalid SNAKESOUND_TRACKING environment variable", "value", trackingStr, "error", err)
		}
	}

	if dbPath := os.Getenv("SNAKESOUND_TRACKING_DB"); dbPath != "" {
		result.DatabasePath = dbPath
		slog.Debug("applied tracking database override from environment", "value", dbPath)
	}

	return &result
}
