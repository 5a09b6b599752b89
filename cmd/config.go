package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyrotator/cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect keyrotator configuration",
	Long: `Inspect the configuration keyrotator resolves from its config files.

Configuration is read from --config if given, otherwise from
./.keyrotatorrc over $HOME/.keyrotatorrc over built-in defaults.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations searched",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		fmt.Fprintf(out, "explicit: %s\n", path)
		return nil
	}

	fmt.Fprintf(out, "local:  %s\n", config.LocalConfigPath())
	global, err := config.GlobalConfigPath()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	fmt.Fprintf(out, "global: %s\n", global)
	return nil
}
