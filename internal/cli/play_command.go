package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"snakesound.click/internal/audio"
)

func newPlayCommand() *cobra.Command {
	var wait time.Duration

	playCmd := &cobra.Command{
		Use:   "play <id>...",
		Short: "Play sound effects by catalog id",
		Long: `Play one or more sound effects from the catalog, in order.

Unknown ids are reported and skipped. Effects are fire-and-forget, so the
command waits --wait before exiting to let them finish.

Examples:
  snakesound play 1
  snakesound play 1 2 2 --wait 2s
  snakesound play 3 --catalog ./packs/retro.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args, wait)
		},
	}

	playCmd.Flags().DurationVar(&wait, "wait", time.Second, "Time to keep the engine open after dispatching")

	return playCmd
}

func parseSoundIDs(args []string) ([]audio.SoundID, error) {
	ids := make([]audio.SoundID, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid sound id '%s': %w", arg, err)
		}
		ids = append(ids, audio.SoundID(n))
	}
	return ids, nil
}

func runPlay(cmd *cobra.Command, args []string, wait time.Duration) error {
	cli, err := requireCLI(cmd)
	if err != nil {
		return err
	}

	ids, err := parseSoundIDs(args)
	if err != nil {
		return err
	}

	if _, err := cli.startAudio(cmd); err != nil {
		return err
	}

	played := 0
	for _, id := range ids {
		err := cli.manager.Play(id)
		switch {
		case errors.Is(err, audio.ErrUnknownSound):
			cmd.PrintErrf("unknown sound id %d, skipped\n", id)
		case err != nil:
			return err
		default:
			played++
		}
	}

	if !cli.manager.IsSoundEnabled() {
		cmd.Println("sound is disabled, nothing played")
		return nil
	}

	slog.Debug("sounds dispatched", "requested", len(ids), "dispatched", played)
	if played > 0 && wait > 0 {
		cli.sleep(wait)
	}
	return nil
}
