package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"snakesound.click/internal/fs"
)

// MockXDGDirs is a mock implementation for testing
type MockXDGDirs struct {
	configPaths    []string
	soundpackPaths []string
	soundpacks     map[string]string
}

func (m *MockXDGDirs) GetConfigPaths(filename string) []string {
	return m.configPaths
}

func (m *MockXDGDirs) GetSoundpackPaths(soundpackID string) []string {
	return m.soundpackPaths
}

func (m *MockXDGDirs) GetCachePath(purpose string) string {
	return filepath.Join("/tmp/test-cache", purpose)
}

func (m *MockXDGDirs) CreateCacheDir(purpose string) error {
	return nil
}

func (m *MockXDGDirs) FindSoundpack(soundpackID string) string {
	return m.soundpacks[soundpackID]
}

func newTestManager(t *testing.T) (*ConfigManager, afero.Fs) {
	t.Helper()
	memFS := fs.NewDefaultFactory().Memory()
	cm := NewConfigManagerWithFilesystem(memFS)
	cm.xdg = &MockXDGDirs{configPaths: []string{"/home/user/.config/snakesound/config.json", "/etc/xdg/snakesound/config.json"}}
	return cm, memFS
}

func writeConfig(t *testing.T, memFS afero.Fs, path, content string) {
	t.Helper()
	if err := memFS.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := afero.WriteFile(memFS, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cm, _ := newTestManager(t)
	config := cm.GetDefaultConfig()

	if !config.Enabled {
		t.Error("Expected sound enabled by default")
	}
	if config.AudioBackend != "auto" {
		t.Errorf("Expected audio backend 'auto', got %s", config.AudioBackend)
	}
	if config.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", config.SampleRate)
	}
	if config.AutoReinitialize {
		t.Error("Expected auto reinitialize off by default")
	}
	if config.FileLogging == nil || config.FileLogging.MaxSizeMB != 10 {
		t.Errorf("Expected file logging defaults, got %+v", config.FileLogging)
	}
	if config.Tracking == nil || !config.Tracking.Enabled {
		t.Errorf("Expected tracking enabled by default, got %+v", config.Tracking)
	}
	if err := cm.ValidateConfig(config); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	cm, memFS := newTestManager(t)

	t.Run("partial file keeps defaults", func(t *testing.T) {
		writeConfig(t, memFS, "/cfg/partial.json", `{"audio_backend":"silent","enabled":false}`)

		config, err := cm.LoadFromFile("/cfg/partial.json")
		if err != nil {
			t.Fatalf("LoadFromFile failed: %v", err)
		}
		if config.AudioBackend != "silent" {
			t.Errorf("Expected backend 'silent', got %s", config.AudioBackend)
		}
		if config.Enabled {
			t.Error("Expected explicit false to override default")
		}
		if config.SampleRate != 44100 {
			t.Errorf("Expected default sample rate, got %d", config.SampleRate)
		}
		if config.Tracking == nil {
			t.Error("Expected default tracking section")
		}
	})

	t.Run("full file", func(t *testing.T) {
		writeConfig(t, memFS, "/cfg/full.json", `{
			"enabled": true,
			"audio_backend": "oto",
			"sample_rate": 48000,
			"catalog_path": "/packs/snake.json",
			"log_level": "debug",
			"auto_reinitialize": true,
			"file_logging": {"enabled": true, "filename": "/var/log/snake.log", "max_size_mb": 1},
			"tracking": {"enabled": false, "database_path": "/tmp/p.db"}
		}`)

		config, err := cm.LoadFromFile("/cfg/full.json")
		if err != nil {
			t.Fatalf("LoadFromFile failed: %v", err)
		}
		if config.SampleRate != 48000 || config.CatalogPath != "/packs/snake.json" || !config.AutoReinitialize {
			t.Errorf("Unexpected config: %+v", config)
		}
		if config.FileLogging.Filename != "/var/log/snake.log" {
			t.Errorf("Unexpected file logging: %+v", config.FileLogging)
		}
		if config.Tracking.Enabled || config.Tracking.DatabasePath != "/tmp/p.db" {
			t.Errorf("Unexpected tracking: %+v", config.Tracking)
		}
	})

	t.Run("errors", func(t *testing.T) {
		writeConfig(t, memFS, "/cfg/broken.json", `{"enabled":`)
		writeConfig(t, memFS, "/cfg/invalid.json", `{"audio_backend":"system_command"}`)

		testCases := []struct {
			name    string
			path    string
			wantMsg string
		}{
			{"missing file", "/cfg/none.json", "failed to read config file"},
			{"malformed json", "/cfg/broken.json", "failed to parse config JSON"},
			{"invalid value", "/cfg/invalid.json", "invalid audio backend"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := cm.LoadFromFile(tc.path)
				if err == nil {
					t.Fatal("Expected error")
				}
				if !strings.Contains(err.Error(), tc.wantMsg) {
					t.Errorf("Expected error containing %q, got %v", tc.wantMsg, err)
				}
			})
		}
	})
}

func TestSaveToFileRoundTrip(t *testing.T) {
	cm, memFS := newTestManager(t)

	config := cm.GetDefaultConfig()
	config.AudioBackend = "beep"
	config.CatalogPath = "/packs/snake"

	path := "/home/user/.config/snakesound/config.json"
	if err := cm.SaveToFile(config, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	if exists, _ := afero.Exists(memFS, path); !exists {
		t.Fatal("Expected config file to be written")
	}

	loaded, err := cm.LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.AudioBackend != "beep" || loaded.CatalogPath != "/packs/snake" {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}

	config.LogLevel = "loud"
	if err := cm.SaveToFile(config, "/other/config.json"); err == nil {
		t.Error("Expected invalid config to be rejected")
	}
	if exists, _ := afero.Exists(memFS, "/other/config.json"); exists {
		t.Error("Invalid config should not be written")
	}
}

func TestLoadConfigDiscovery(t *testing.T) {
	t.Run("no file uses defaults", func(t *testing.T) {
		cm, _ := newTestManager(t)
		config, err := cm.LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.AudioBackend != "auto" {
			t.Errorf("Expected defaults, got %+v", config)
		}
	})

	t.Run("system path used when user path missing", func(t *testing.T) {
		cm, memFS := newTestManager(t)
		writeConfig(t, memFS, "/etc/xdg/snakesound/config.json", `{"audio_backend":"malgo"}`)

		config, err := cm.LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.AudioBackend != "malgo" {
			t.Errorf("Expected system config, got %s", config.AudioBackend)
		}
	})

	t.Run("user path wins", func(t *testing.T) {
		cm, memFS := newTestManager(t)
		writeConfig(t, memFS, "/etc/xdg/snakesound/config.json", `{"audio_backend":"malgo"}`)
		writeConfig(t, memFS, "/home/user/.config/snakesound/config.json", `{"audio_backend":"silent"}`)

		config, err := cm.LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.AudioBackend != "silent" {
			t.Errorf("Expected user config, got %s", config.AudioBackend)
		}
	})
}

func TestValidateConfig(t *testing.T) {
	cm, _ := newTestManager(t)

	testCases := []struct {
		name     string
		mutate   func(c *Config)
		wantMsgs []string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "empty backend and zero rate allowed",
			mutate: func(c *Config) { c.AudioBackend = ""; c.SampleRate = 0 },
		},
		{
			name:     "sample rate too low",
			mutate:   func(c *Config) { c.SampleRate = 100 },
			wantMsgs: []string{"sample_rate"},
		},
		{
			name:     "bad log level",
			mutate:   func(c *Config) { c.LogLevel = "verbose" },
			wantMsgs: []string{"invalid log level 'verbose'"},
		},
		{
			name: "multiple problems aggregated",
			mutate: func(c *Config) {
				c.AudioBackend = "alsa"
				c.FileLogging.MaxBackups = -1
				c.FileLogging.MaxAgeDays = -2
			},
			wantMsgs: []string{"invalid audio backend 'alsa'", "max_backups must be >= 0", "max_age_days must be >= 0", "; "},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := cm.GetDefaultConfig()
			tc.mutate(config)

			err := cm.ValidateConfig(config)
			if len(tc.wantMsgs) == 0 {
				if err != nil {
					t.Errorf("Expected valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected validation error")
			}
			for _, msg := range tc.wantMsgs {
				if !strings.Contains(err.Error(), msg) {
					t.Errorf("Expected %q in %v", msg, err)
				}
			}
		})
	}
}

func TestMergeConfigs(t *testing.T) {
	cm, _ := newTestManager(t)
	base := cm.GetDefaultConfig()

	merged := cm.MergeConfigs(base, &Config{Enabled: true, AudioBackend: "silent", SampleRate: 22050})

	if merged.AudioBackend != "silent" || merged.SampleRate != 22050 {
		t.Errorf("Expected overrides applied, got %+v", merged)
	}
	if merged.CatalogPath != base.CatalogPath || merged.LogLevel != base.LogLevel {
		t.Errorf("Expected unset fields to keep base values, got %+v", merged)
	}
	if merged.Tracking != base.Tracking {
		t.Error("Expected nil override sections to keep base sections")
	}
	if base.AudioBackend != "auto" {
		t.Error("MergeConfigs must not modify base")
	}
}

func TestLoadOverrideFile(t *testing.T) {
	cm, memFS := newTestManager(t)
	base := cm.GetDefaultConfig()
	base.CatalogPath = "/packs/user.json"

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, merged *Config)
		wantErr bool
	}{
		{
			name:    "scalar fields override, others keep base",
			content: `{"audio_backend": "silent", "log_level": "debug"}`,
			check: func(t *testing.T, merged *Config) {
				if merged.AudioBackend != "silent" || merged.LogLevel != "debug" {
					t.Errorf("Expected overrides applied, got %+v", merged)
				}
				if merged.CatalogPath != "/packs/user.json" || merged.SampleRate != 44100 || !merged.Enabled {
					t.Errorf("Expected base values kept, got %+v", merged)
				}
			},
		},
		{
			name:    "explicit false overrides base",
			content: `{"enabled": false}`,
			check: func(t *testing.T, merged *Config) {
				if merged.Enabled {
					t.Error("Expected enabled=false from override")
				}
			},
		},
		{
			name:    "partial sections only change named keys",
			content: `{"file_logging": {"enabled": true}, "tracking": {"kinds": ["played"]}}`,
			check: func(t *testing.T, merged *Config) {
				if !merged.FileLogging.Enabled || merged.FileLogging.MaxSizeMB != 10 {
					t.Errorf("Expected file logging enabled with base sizes, got %+v", merged.FileLogging)
				}
				if !merged.Tracking.Enabled || len(merged.Tracking.Kinds) != 1 {
					t.Errorf("Expected tracking kinds added, got %+v", merged.Tracking)
				}
				if base.FileLogging.Enabled || len(base.Tracking.Kinds) != 0 {
					t.Error("LoadOverrideFile must not modify base sections")
				}
			},
		},
		{
			name:    "invalid JSON",
			content: `{"enabled": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, memFS, "/work/override.json", tt.content)

			override, err := cm.LoadOverrideFile("/work/override.json", base)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadOverrideFile failed: %v", err)
			}
			tt.check(t, cm.MergeConfigs(base, override))
		})
	}

	if _, err := cm.LoadOverrideFile("/work/missing.json", base); err == nil {
		t.Error("Expected error for missing override file")
	}
}

func TestUserConfigPath(t *testing.T) {
	cm, _ := newTestManager(t)
	if got := cm.UserConfigPath(); got != "/home/user/.config/snakesound/config.json" {
		t.Errorf("UserConfigPath() = %s", got)
	}

	cm.xdg = &MockXDGDirs{}
	if got := cm.UserConfigPath(); got != "config.json" {
		t.Errorf("UserConfigPath() without paths = %s", got)
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	cm, _ := newTestManager(t)

	t.Run("valid values", func(t *testing.T) {
		t.Setenv("SNAKESOUND_ENABLED", "false")
		t.Setenv("SNAKESOUND_AUDIO_BACKEND", "silent")
		t.Setenv("SNAKESOUND_LOG_LEVEL", "debug")
		t.Setenv("SNAKESOUND_CATALOG", "/packs/env.json")
		t.Setenv("SNAKESOUND_SAMPLE_RATE", "48000")
		t.Setenv("SNAKESOUND_TRACKING", "0")

		base := cm.GetDefaultConfig()
		result := cm.ApplyEnvironmentOverrides(base)

		if result.Enabled {
			t.Error("Expected enabled=false from environment")
		}
		if result.AudioBackend != "silent" {
			t.Errorf("Expected backend from environment, got %s", result.AudioBackend)
		}
		if result.LogLevel != "debug" || result.CatalogPath != "/packs/env.json" || result.SampleRate != 48000 {
			t.Errorf("Unexpected overrides: %+v", result)
		}
		if result.Tracking.Enabled {
			t.Error("Expected tracking disabled from environment")
		}
		if !base.Enabled || !base.Tracking.Enabled {
			t.Error("ApplyEnvironmentOverrides must not modify its input")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		t.Setenv("SNAKESOUND_ENABLED", "maybe")
		t.Setenv("SNAKESOUND_AUDIO_BACKEND", "pulse")
		t.Setenv("SNAKESOUND_SAMPLE_RATE", "fast")

		result := cm.ApplyEnvironmentOverrides(cm.GetDefaultConfig())

		if !result.Enabled || result.AudioBackend != "auto" || result.SampleRate != 44100 {
			t.Errorf("Expected defaults to survive invalid environment, got %+v", result)
		}
	})
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseLogLevel(tc.input)
			if err != nil {
				t.Fatalf("ParseLogLevel(%q) failed: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	cm, _ := newTestManager(t)

	if got := cm.ResolveLogFilePath(""); got != "/tmp/test-cache/logs/snakesound.log" {
		t.Errorf("ResolveLogFilePath(\"\") = %s", got)
	}
	if got := cm.ResolveLogFilePath("/var/log/x.log"); got != "/var/log/x.log" {
		t.Errorf("Explicit log path should be returned unchanged, got %s", got)
	}
	if got := cm.ResolveDatabasePath(""); got != "/tmp/test-cache/playback.db" {
		t.Errorf("ResolveDatabasePath(\"\") = %s", got)
	}
	if got := cm.ResolveDatabasePath(":memory:"); got != ":memory:" {
		t.Errorf("Explicit database path should be returned unchanged, got %s", got)
	}
}

func TestResolveCatalogPath(t *testing.T) {
	cm, memFS := newTestManager(t)
	cm.xdg = &MockXDGDirs{
		soundpackPaths: []string{"/usr/share/snakesound/soundpacks"},
		soundpacks:     map[string]string{"retro": "/usr/share/snakesound/soundpacks/retro"},
	}
	writeConfig(t, memFS, "/packs/snake.json", `{"sounds":{"1":"beep.wav"}}`)

	testCases := []struct {
		name    string
		catalog string
		want    string
		wantErr bool
	}{
		{"existing path", "/packs/snake.json", "/packs/snake.json", false},
		{"soundpack id", "retro", "/usr/share/snakesound/soundpacks/retro", false},
		{"unknown", "missing", "", true},
		{"empty", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := cm.ResolveCatalogPath(tc.catalog)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCatalogPath failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("ResolveCatalogPath(%q) = %s, want %s", tc.catalog, got, tc.want)
			}
		})
	}
}

func TestAudioBackendSupport(t *testing.T) {
	cm, _ := newTestManager(t)

	for _, backend := range []string{"", "auto", "malgo", "beep", "oto", "silent"} {
		if !cm.IsValidAudioBackend(backend) {
			t.Errorf("Expected %q to be valid", backend)
		}
	}
	for _, backend := range []string{"system_command", "AUTO", "pulse"} {
		if cm.IsValidAudioBackend(backend) {
			t.Errorf("Expected %q to be invalid", backend)
		}
	}

	backends := cm.GetSupportedAudioBackends()
	backends[0] = "mutated"
	if cm.GetSupportedAudioBackends()[0] != "auto" {
		t.Error("GetSupportedAudioBackends should return a copy")
	}
}
