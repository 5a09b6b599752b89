package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyrotator/cli/internal/keys"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a service account key",
	Long: `Delete a single key of a service account.

--key-id accepts either the bare key id or the fully-qualified name
projects/{project}/serviceAccounts/{account}/keys/{id}.

Examples:
  keyrotator delete --project-id my-project --iam-account ci-deployer --key-id 1a2b3c4d`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	addScopeFlags(deleteCmd)
	deleteCmd.Flags().StringP("key-id", "k", "", "id or fully-qualified name of the key to delete (required)")
	deleteCmd.MarkFlagRequired("key-id")
}

func runDelete(cmd *cobra.Command, args []string) (err error) {
	keyID, _ := cmd.Flags().GetString("key-id")
	if keyID == "" {
		return fmt.Errorf("--key-id must not be empty")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	deleter := &keys.Deleter{Client: s.client, Log: s.log}
	if err := deleter.Delete(cmd.Context(), s.scope, keyID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Key %s has been deleted.\n", keyID)
	return nil
}
