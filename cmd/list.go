package cmd

import (
	"github.com/spf13/cobra"

	"github.com/keyrotator/cli/internal/keys"
	"github.com/keyrotator/cli/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List service account keys",
	Long: `List the user-managed keys of a service account.

Displays key ID, creation time, expiry, algorithm and status.
Private key material is never shown.

Examples:
  keyrotator list --project-id my-project --iam-account ci-deployer
  keyrotator list -p my-project -a ci-deployer -o yaml`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	addScopeFlags(listCmd)
	listCmd.Flags().StringP("output", "o", output.FormatTable, "output format: table, json or yaml")
}

func runList(cmd *cobra.Command, args []string) (err error) {
	format, _ := cmd.Flags().GetString("output")
	if err := output.ValidateFormat(format); err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	lister := &keys.Lister{Client: s.client, Log: s.log}
	list, err := lister.List(cmd.Context(), s.scope)
	if err != nil {
		return err
	}
	s.recorder.KeysListed(len(list))

	return output.WriteKeys(cmd.OutOrStdout(), list, format)
}
