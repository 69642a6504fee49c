// Command packgen scans a soundpack directory and writes its catalog.json,
// so a pack assembled from "<id>-<label>.wav" files can be edited by hand.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"snakesound.click/internal/soundpack"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := newRootCommand(afero.NewOsFs()).Execute(); err != nil {
		slog.Error("packgen failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(fs afero.Fs) *cobra.Command {
	var force, toStdout bool

	rootCmd := &cobra.Command{
		Use:   "packgen <pack-dir>",
		Short: "Write catalog.json for a soundpack directory",
		Long: `Scan a soundpack directory of "<id>[-label].<ext>" files and write the
catalog.json that maps each id to its asset.

Examples:
  packgen ~/sounds/arcade
  packgen --stdout ~/sounds/arcade > arcade.json`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(fs, cmd.OutOrStdout(), args[0], force, toStdout)
		},
	}

	rootCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing catalog.json")
	rootCmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the catalog instead of writing it")

	return rootCmd
}

func run(fs afero.Fs, out io.Writer, dir string, force, toStdout bool) error {
	target := filepath.Join(dir, soundpack.CatalogFileName)
	if !toStdout && !force {
		if exists, _ := afero.Exists(fs, target); exists {
			return fmt.Errorf("%s already exists (use --force to overwrite)", target)
		}
	}

	pack, err := soundpack.LoadDirectory(fs, dir)
	if err != nil {
		return err
	}

	data, err := pack.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	data = append(data, '\n')

	if toStdout {
		_, err := out.Write(data)
		return err
	}

	if err := afero.WriteFile(fs, target, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	slog.Info("catalog written", "path", target, "sounds", len(pack.Catalog.Sounds), "music", string(pack.Catalog.Music))
	return nil
}
