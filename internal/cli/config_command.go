package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
		Long: `Inspect the configuration snakesound runs with: defaults, the discovered
config file, a --config file layered over it, SNAKESOUND_* environment
variables and command-line flags, in that order.`,
	}

	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigSaveCommand())

	return configCmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := requireCLI(cmd)
			if err != nil {
				return err
			}
			cfg, err := cli.loadAndValidateConfig(cmd)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func newConfigSaveCommand() *cobra.Command {
	var force bool

	saveCmd := &cobra.Command{
		Use:   "save [path]",
		Short: "Write the effective configuration to a file",
		Long: `Write the effective configuration to path, or to the per-user config file
when no path is given. An existing file is kept unless --force is set.

Examples:
  snakesound config save
  snakesound config save --backend silent --catalog ~/packs/arcade --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSave(cmd, args, force)
		},
	}

	saveCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return saveCmd
}

func runConfigSave(cmd *cobra.Command, args []string, force bool) error {
	cli, err := requireCLI(cmd)
	if err != nil {
		return err
	}

	cfg, err := cli.loadAndValidateConfig(cmd)
	if err != nil {
		return err
	}
	cli.setupLogging(cfg, cmd.ErrOrStderr())

	path := cli.configManager.UserConfigPath()
	if len(args) == 1 {
		path = args[0]
	}

	if !force {
		if exists, _ := afero.Exists(cli.fs, path); exists {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	if err := cli.configManager.SaveToFile(cfg, path); err != nil {
		return err
	}
	cmd.Printf("config written to %s\n", path)
	return nil
}
