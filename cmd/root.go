package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keyrotator",
	Short: "keyrotator - Service account key management utility",
	Long: `keyrotator is a command line tool for managing the user-managed
keys of a cloud IAM service account.

Use it to list, create and delete keys, and to clean up keys
older than a maximum age as part of a rotation schedule.`,
	SilenceErrors: true,
}

// Execute runs the root command. ctx is cancelled to abort in-flight remote
// calls and retry waits.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./.keyrotatorrc, then $HOME/.keyrotatorrc)")
	rootCmd.PersistentFlags().String("credentials", "", "service account credentials JSON file (default is $GOOGLE_APPLICATION_CREDENTIALS)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default from config, else info)")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for the per-run log file; empty disables it (default from config, else .)")
	rootCmd.PersistentFlags().String("metrics-file", "", "write run metrics in Prometheus text format to this file")
}

// addScopeFlags registers the flags naming the target service account.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("project-id", "p", "", "project id of the service account (default from config, then the credentials file)")
	cmd.Flags().StringP("iam-account", "a", "", "IAM service account id or email (default from config)")
}
