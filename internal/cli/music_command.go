package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"snakesound.click/internal/audio"
)

func newMusicCommand() *cobra.Command {
	var duration time.Duration

	musicCmd := &cobra.Command{
		Use:   "music",
		Short: "Loop the catalog's background music",
		Long: `Loop the catalog's background music for --duration, then stop it.

Examples:
  snakesound music
  snakesound music --duration 1m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMusic(cmd, duration)
		},
	}

	musicCmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "How long to play the music")

	return musicCmd
}

func runMusic(cmd *cobra.Command, duration time.Duration) error {
	cli, err := requireCLI(cmd)
	if err != nil {
		return err
	}

	if _, err := cli.startAudio(cmd); err != nil {
		return err
	}

	if err := cli.manager.PlayBackgroundMusic(); err != nil {
		if errors.Is(err, audio.ErrNotLoaded) {
			return fmt.Errorf("catalog has no background music")
		}
		return err
	}

	if cli.manager.MusicState() != audio.MusicPlaying {
		cmd.Println("music not started (sound disabled or engine unavailable)")
		return nil
	}

	cmd.Printf("playing background music for %s\n", duration)
	cli.sleep(duration)
	cli.manager.StopBackgroundMusic()
	cmd.Println("music stopped")
	return nil
}
