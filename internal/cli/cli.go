package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"snakesound.click/internal/audio"
	"snakesound.click/internal/config"
	"snakesound.click/internal/fs"
	"snakesound.click/internal/soundpack"
	"snakesound.click/internal/tracking"
)

const Version = "0.4.0"

// PlatformFactoryFunc builds the platform factory for a catalog's loader
type PlatformFactoryFunc func(loader audio.ClipLoader, sampleRate int) audio.PlatformFactory

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	fs               afero.Fs
	configManager    *config.ConfigManager
	platformFactory  PlatformFactoryFunc
	terminalDetector TerminalDetector
	sleep            func(time.Duration)
	sessionID        string

	// set while a command runs
	manager    *audio.AudioManager
	platform   audio.Platform
	recorder   *tracking.Recorder
	trackingDB *sql.DB
	packPath   string
}

type cliContextKey struct{}

// NewCLI creates a CLI on the OS filesystem with real audio platforms
func NewCLI() *CLI {
	return NewCLIWithFilesystem(fs.NewDefaultFactory().Production())
}

// NewCLIWithFilesystem creates a CLI that reads config and catalogs through filesystem
func NewCLIWithFilesystem(filesystem afero.Fs) *CLI {
	slog.Debug("creating new CLI instance")

	rootCmd := &cobra.Command{
		Use:   "snakesound",
		Short: "Sound effects and background music player",
		Long: `snakesound plays the sound effects and looping background music of a
soundpack catalog, recovering automatically when the audio engine is released.`,
		SilenceUsage: true,
		RunE:         runRootE,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog file, pack directory or soundpack id")
	rootCmd.PersistentFlags().String("backend", "", "Audio backend (auto, malgo, beep, oto, silent)")
	rootCmd.PersistentFlags().Bool("silent", false, "Silent mode - decode and count but never open a device")

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(newPlayCommand())
	rootCmd.AddCommand(newMusicCommand())
	rootCmd.AddCommand(newCatalogCommand())
	rootCmd.AddCommand(newReplCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newConfigCommand())

	return &CLI{
		rootCmd:          rootCmd,
		fs:               filesystem,
		configManager:    config.NewConfigManagerWithFilesystem(filesystem),
		platformFactory:  defaultPlatformFactory,
		terminalDetector: &DefaultTerminalDetector{},
		sleep:            time.Sleep,
		sessionID:        uuid.NewString(),
	}
}

func defaultPlatformFactory(loader audio.ClipLoader, sampleRate int) audio.PlatformFactory {
	return audio.NewPlatformFactory(loader, sampleRate)
}

// contextWithCLI stores CLI instance in context for command handlers
func contextWithCLI(cli *CLI) context.Context {
	return context.WithValue(context.Background(), cliContextKey{}, cli)
}

// cliFromContext extracts CLI instance from context
func cliFromContext(ctx context.Context) *CLI {
	if cli, ok := ctx.Value(cliContextKey{}).(*CLI); ok {
		return cli
	}
	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "snakesound version %s\n", Version)
}

func runRootE(cmd *cobra.Command, args []string) error {
	if version, _ := cmd.Flags().GetBool("version"); version {
		printVersion(cmd.OutOrStdout())
		return nil
	}
	return cmd.Help()
}

// Run executes the CLI with the given arguments and I/O streams
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	slog.Debug("CLI run started", "args", args)

	// Answer version requests before touching config or audio
	if len(args) > 1 && (args[1] == "--version" || args[1] == "-v") {
		printVersion(stdout)
		return 0
	}

	defer c.shutdown()

	c.rootCmd.SetArgs(args[1:]) // Skip program name
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
	c.rootCmd.SetContext(contextWithCLI(c))

	if err := c.rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		return 1
	}
	return 0
}

// shutdown releases the engine, drains the recorder and closes the tracking
// database, in that order
func (c *CLI) shutdown() {
	if c.manager != nil {
		if err := c.manager.Close(); err != nil {
			slog.Error("error closing audio manager", "error", err)
		}
		c.manager = nil
	}
	if c.recorder != nil {
		c.recorder.Close()
		slog.Debug("playback tracking stopped",
			"session_id", c.sessionID,
			"written", c.recorder.Written(),
			"dropped", c.recorder.Dropped(),
			"disabled", c.recorder.Disabled())
		c.recorder = nil
	}
	if c.trackingDB != nil {
		if err := c.trackingDB.Close(); err != nil {
			slog.Error("error closing tracking database", "error", err)
		}
		c.trackingDB = nil
	}
}

// loadAndValidateConfig loads configuration from flags and files, applies overrides, and validates
func (c *CLI) loadAndValidateConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	catalogFlag, _ := cmd.Flags().GetString("catalog")
	backendFlag, _ := cmd.Flags().GetString("backend")
	silent, _ := cmd.Flags().GetBool("silent")

	cfg, err := c.configManager.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	// an explicit --config file layers over the discovered one
	if configFile != "" {
		override, err := c.configManager.LoadOverrideFile(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
		cfg = c.configManager.MergeConfigs(cfg, override)
	}

	cfg = c.configManager.ApplyEnvironmentOverrides(cfg)

	if catalogFlag != "" {
		cfg.CatalogPath = catalogFlag
	}
	if backendFlag != "" {
		cfg.AudioBackend = backendFlag
	}
	if silent {
		cfg.AudioBackend = "silent"
		slog.Debug("silent mode enabled")
	}

	if err := c.configManager.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupLogging routes slog to stderr at the configured level and, when file
// logging is enabled, to a rotating log file that also keeps Info records
func (c *CLI) setupLogging(cfg *config.Config, stderrWriter io.Writer) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderrWriter, &slog.HandlerOptions{Level: level}),
	}

	if cfg.FileLogging != nil && cfg.FileLogging.Enabled {
		logFilePath := c.configManager.ResolveLogFilePath(cfg.FileLogging.Filename)

		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			slog.Error("failed to create log directory", "path", logDir, "error", err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   logFilePath,
				MaxSize:    cfg.FileLogging.MaxSizeMB,
				MaxBackups: cfg.FileLogging.MaxBackups,
				MaxAge:     cfg.FileLogging.MaxAgeDays,
				Compress:   cfg.FileLogging.Compress,
			}
			fileLevel := level
			if fileLevel > slog.LevelInfo {
				fileLevel = slog.LevelInfo
			}
			handlers = append(handlers, slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: fileLevel}))
		}
	}

	slog.SetDefault(slog.New(NewMultiLevelHandler(handlers...)))

	slog.Debug("logging setup completed",
		"level", level.String(),
		"handlers", len(handlers),
		"file_enabled", len(handlers) > 1)
}

// initializeTracking opens the tracking database if enabled. Failures only
// disable tracking.
func (c *CLI) initializeTracking(cfg *config.Config) {
	if c.trackingDB != nil {
		return
	}
	if cfg.Tracking == nil || !cfg.Tracking.Enabled {
		slog.Debug("playback tracking disabled")
		return
	}

	dbPath := c.configManager.ResolveDatabasePath(cfg.Tracking.DatabasePath)
	db, err := tracking.NewDatabase(dbPath)
	if err != nil {
		slog.Error("failed to initialize tracking database, continuing without tracking",
			"path", dbPath, "error", err)
		return
	}

	c.trackingDB = db
	slog.Debug("tracking database initialized", "path", dbPath)
}

// openSoundpack resolves the configured catalog and loads it
func (c *CLI) openSoundpack(cfg *config.Config) (*soundpack.Soundpack, error) {
	path, err := c.configManager.ResolveCatalogPath(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	pack, err := soundpack.Open(c.fs, path)
	if err != nil {
		return nil, err
	}
	c.packPath = path
	slog.Info("soundpack opened",
		"name", pack.Name,
		"type", pack.Type,
		"sounds", len(pack.Catalog.Sounds),
		"music", string(pack.Catalog.Music))
	return pack, nil
}

// startAudio loads config, sets up logging and tracking, builds the manager
// and initializes its sounds
func (c *CLI) startAudio(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := c.loadAndValidateConfig(cmd)
	if err != nil {
		return nil, err
	}
	c.setupLogging(cfg, cmd.ErrOrStderr())
	c.initializeTracking(cfg)

	pack, err := c.openSoundpack(cfg)
	if err != nil {
		return nil, err
	}

	assets := fs.NewDefaultFactory().Assets(c.fs)
	loader := audio.NewAssetLoader(assets, pack.Dir, audio.NewDefaultRegistry())

	platform, err := c.platformFactory(loader, cfg.SampleRate).CreatePlatform(cfg.AudioBackend)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio platform '%s': %w", cfg.AudioBackend, err)
	}

	opts := []audio.Option{
		audio.WithSoundEnabled(cfg.Enabled),
		audio.WithAutoReinitialize(cfg.AutoReinitialize),
		audio.WithObserver(tracking.NewSlogObserver(nil)),
	}
	if c.trackingDB != nil {
		recorderOpts := []tracking.RecorderOption{tracking.WithPlatform(platform.Name())}
		if len(cfg.Tracking.Kinds) > 0 {
			kinds, err := parseTrackingKinds(cfg.Tracking.Kinds)
			if err != nil {
				return nil, err
			}
			recorderOpts = append(recorderOpts, tracking.WithKinds(kinds...))
		}
		c.recorder = tracking.NewRecorder(c.trackingDB, c.sessionID, recorderOpts...)
		opts = append(opts, audio.WithObserver(c.recorder))
	}

	c.platform = platform
	c.manager = audio.NewAudioManager(platform, pack.Catalog, opts...)

	if err := c.manager.InitSounds(); err != nil {
		var initErr *audio.InitError
		if errors.As(err, &initErr) && initErr.Asset != "" {
			return nil, fmt.Errorf("failed to load %s from %s: %w", initErr.Asset, pack.Dir, err)
		}
		return nil, err
	}

	slog.Debug("audio started", "platform", platform.Name(), "session_id", c.sessionID)
	return cfg, nil
}

func parseTrackingKinds(names []string) ([]audio.EventKind, error) {
	kinds := make([]audio.EventKind, 0, len(names))
	for _, name := range names {
		kind, err := audio.ParseEventKind(name)
		if err != nil {
			return nil, fmt.Errorf("invalid tracking kinds: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// requireCLI fetches the CLI from a command's context
func requireCLI(cmd *cobra.Command) (*CLI, error) {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return nil, fmt.Errorf("CLI instance not found in context")
	}
	return cli, nil
}
