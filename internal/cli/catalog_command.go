package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"snakesound.click/internal/soundpack"
)

func newCatalogCommand() *cobra.Command {
	var validate bool

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the sounds in the configured catalog",
		Long: `List catalog ids and the assets they map to, without opening an audio device.

With --validate, every asset is checked on disk and missing files are reported.

Examples:
  snakesound catalog
  snakesound catalog --catalog retro --validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, validate)
		},
	}

	catalogCmd.Flags().BoolVar(&validate, "validate", false, "Check that every asset file exists")

	return catalogCmd
}

func runCatalog(cmd *cobra.Command, validate bool) error {
	cli, err := requireCLI(cmd)
	if err != nil {
		return err
	}

	cfg, err := cli.loadAndValidateConfig(cmd)
	if err != nil {
		return err
	}
	cli.setupLogging(cfg, cmd.ErrOrStderr())

	pack, err := cli.openSoundpack(cfg)
	if err != nil {
		return err
	}

	printCatalog(cmd.OutOrStdout(), pack)

	if !validate {
		return nil
	}

	if err := pack.Validate(cli.fs); err != nil {
		if soundpack.IsFileNotFoundError(err) {
			var missing []string
			for _, line := range strings.Split(err.Error(), "\n") {
				missing = append(missing, "  "+line)
			}
			cmd.PrintErrf("missing assets:\n%s\n", strings.Join(missing, "\n"))
			return errors.New("catalog validation failed")
		}
		return err
	}
	cmd.Println("all assets present")
	return nil
}

func printCatalog(w io.Writer, pack *soundpack.Soundpack) {
	fmt.Fprintf(w, "Soundpack: %s (%s)\n", pack.Name, pack.Type)
	fmt.Fprintf(w, "Directory: %s\n\n", pack.Dir)

	ids, sounds := pack.Refs()
	for _, id := range ids {
		fmt.Fprintf(w, "  %4d  %s\n", id, sounds[id])
	}

	if pack.Catalog.Music != "" {
		fmt.Fprintf(w, "\n  music %s\n", pack.Catalog.Music)
	} else {
		fmt.Fprintf(w, "\n  music (none)\n")
	}
}
