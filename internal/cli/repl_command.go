package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"snakesound.click/internal/audio"
	"snakesound.click/internal/soundpack"
)

const replHelp = `commands:
  play N     play sound N
  mute       disable sound (stops music)
  unmute     enable sound
  music      start background music
  stop       stop background music
  reinit     rebuild the engine and reload sounds
  release    drop the engine as if the OS reclaimed it (silent backend)
  status     show engine, sound and music state
  help       show this help
  quit       exit`

// releaser is implemented by platforms that can fake an external release
type releaser interface {
	SimulateRelease()
}

func newReplCommand() *cobra.Command {
	var watch bool

	replCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive console driving the audio manager",
		Long: `Read commands from stdin, one per line, and apply them to the audio manager.

A prompt is printed only when stdin is a terminal, so scripts can pipe commands in:
  printf 'play 1\nstatus\n' | snakesound repl --silent

With --watch the catalog is reloaded whenever it, or a file in a scanned pack
directory, changes on disk.

` + replHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, watch)
		},
	}

	replCmd.Flags().BoolVar(&watch, "watch", false, "Reload the catalog when it changes on disk")

	return replCmd
}

func runRepl(cmd *cobra.Command, watch bool) error {
	cli, err := requireCLI(cmd)
	if err != nil {
		return err
	}

	if _, err := cli.startAudio(cmd); err != nil {
		return err
	}

	if watch {
		stop, err := cli.watchCatalog()
		if err != nil {
			return err
		}
		defer stop()
	}

	prompt := cli.stdinIsTerminal(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if quit := cli.execReplLine(out, scanner.Text()); quit {
			return nil
		}
	}
	return scanner.Err()
}

// watchCatalog reloads the soundpack into the manager on every change
// until the returned stop function is called
func (c *CLI) watchCatalog() (func(), error) {
	w, err := soundpack.NewWatcher(c.packPath)
	if err != nil {
		return nil, fmt.Errorf("failed to watch catalog: %w", err)
	}
	slog.Info("watching catalog", "path", c.packPath)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case changed, ok := <-w.Events:
				if !ok {
					return
				}
				c.reloadCatalog(changed)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("catalog watcher error", "error", err)
			}
		}
	}()

	return func() {
		if err := w.Close(); err != nil {
			slog.Debug("catalog watcher close failed", "error", err)
		}
		<-done
	}, nil
}

// reloadCatalog reopens the soundpack; a broken edit keeps the old catalog
func (c *CLI) reloadCatalog(changed string) {
	pack, err := soundpack.Open(c.fs, c.packPath)
	if err != nil {
		slog.Warn("catalog reload failed, keeping current catalog", "changed", changed, "error", err)
		return
	}
	if err := c.manager.ReplaceCatalog(pack.Catalog); err != nil {
		slog.Error("catalog reload could not initialize sounds", "changed", changed, "error", err)
		return
	}
	slog.Info("catalog reloaded", "changed", changed, "sounds", len(pack.Catalog.Sounds))
}

// execReplLine runs one console line, returning true on quit
func (c *CLI) execReplLine(out io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	m := c.manager
	switch fields[0] {
	case "play", "p":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: play N")
			return false
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Fprintf(out, "invalid sound id '%s'\n", fields[1])
			return false
		}
		if err := m.Play(audio.SoundID(n)); err != nil {
			fmt.Fprintln(out, err)
		}
	case "mute":
		m.ToggleSound(false)
		fmt.Fprintln(out, "sound disabled")
	case "unmute":
		m.ToggleSound(true)
		fmt.Fprintln(out, "sound enabled")
	case "music":
		if err := m.PlayBackgroundMusic(); err != nil {
			if errors.Is(err, audio.ErrNotLoaded) {
				fmt.Fprintln(out, "no background music loaded")
			} else {
				fmt.Fprintln(out, err)
			}
			return false
		}
		fmt.Fprintf(out, "music %s\n", m.MusicState())
	case "stop":
		m.StopBackgroundMusic()
		fmt.Fprintf(out, "music %s\n", m.MusicState())
	case "reinit":
		if err := m.Reinitialize(); err != nil {
			fmt.Fprintf(out, "reinitialize failed: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "engine reinitialized")
	case "release":
		r, ok := c.platform.(releaser)
		if !ok {
			fmt.Fprintf(out, "the %s backend cannot simulate a release\n", c.platform.Name())
			return false
		}
		r.SimulateRelease()
		fmt.Fprintln(out, "engine released")
	case "status", "s":
		c.printStatus(out)
	case "help", "?":
		fmt.Fprintln(out, replHelp)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(out, "unknown command '%s' (try help)\n", fields[0])
	}
	return false
}

func (c *CLI) printStatus(out io.Writer) {
	m := c.manager
	ids := m.SoundIDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}

	fmt.Fprintf(out, "platform: %s\n", m.PlatformName())
	fmt.Fprintf(out, "engine:   %s\n", m.State())
	fmt.Fprintf(out, "released: %t\n", m.IsMspReleased())
	fmt.Fprintf(out, "sound:    %s\n", enabledWord(m.IsSoundEnabled()))
	fmt.Fprintf(out, "music:    %s\n", m.MusicState())
	fmt.Fprintf(out, "sounds:   [%s]\n", strings.Join(parts, " "))
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
