package cmd

import (
	"github.com/spf13/cobra"

	"github.com/keyrotator/cli/internal/keys"
	"github.com/keyrotator/cli/internal/output"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete keys older than a maximum age",
	Long: `Delete the user-managed keys of a service account that were
created more than --key-max-age days ago.

Keys are listed, every key created strictly before the cutoff
(now minus the maximum age) is selected, and the selection is
deleted one key at a time. Keys whose creation time cannot be
read are skipped and logged.

By default the first failed deletion aborts the rest of the batch.
Re-running the command after a failure picks up where it stopped.

Examples:
  keyrotator cleanup --project-id my-project --iam-account ci-deployer --key-max-age 90
  keyrotator cleanup -p my-project -a ci-deployer --key-max-age 30 --dry-run
  keyrotator cleanup -p my-project -a ci-deployer --key-max-age 30 --keep-going -o json`,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
	addScopeFlags(cleanupCmd)
	cleanupCmd.Flags().Int("key-max-age", 0, "delete keys created more than this many days ago (required)")
	cleanupCmd.Flags().Bool("dry-run", false, "report the keys that would be deleted without deleting them")
	cleanupCmd.Flags().Bool("keep-going", false, "continue past failed deletions and report all failures")
	cleanupCmd.Flags().StringP("output", "o", output.FormatTable, "report format: table, json or yaml")
	cleanupCmd.MarkFlagRequired("key-max-age")
}

func runCleanup(cmd *cobra.Command, args []string) (err error) {
	maxAge, _ := cmd.Flags().GetInt("key-max-age")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	keepGoing, _ := cmd.Flags().GetBool("keep-going")
	format, _ := cmd.Flags().GetString("output")
	if err := output.ValidateFormat(format); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	cleaner := &keys.Cleaner{
		Client:    s.client,
		Log:       s.log,
		DryRun:    dryRun,
		KeepGoing: keepGoing,
	}
	if s.recorder != nil {
		cleaner.Observer = s.recorder
	}

	report, runErr := cleaner.Run(cmd.Context(), s.scope, maxAge)
	if report != nil && (runErr == nil || report.Listed > 0) {
		if err := output.WriteReport(cmd.OutOrStdout(), report, format); err != nil {
			return err
		}
	}
	return runErr
}
