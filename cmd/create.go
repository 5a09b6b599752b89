package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keyrotator/cli/internal/keys"
	"github.com/keyrotator/cli/internal/output"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new service account key",
	Long: `Create a new user-managed key for a service account.

The key type and algorithm default to the [keys] section of the
config file, else TYPE_GOOGLE_CREDENTIALS_FILE and KEY_ALG_RSA_2048.
Values are passed to the API as given.

The private key is only returned once. Use --output-file to save it;
it is never printed to the terminal. With --decode the credentials
payload is written instead of the full API record.

Examples:
  keyrotator create --project-id my-project --iam-account ci-deployer
  keyrotator create -p my-project -a ci-deployer --output-file key.json --decode`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	addScopeFlags(createCmd)
	createCmd.Flags().String("key-type", "", "private key type (default: from config)")
	createCmd.Flags().String("key-algorithm", "", "key algorithm (default: from config)")
	createCmd.Flags().StringP("output-file", "f", "", "write the new key to this file (mode 0600)")
	createCmd.Flags().Bool("decode", false, "write the decoded credentials payload instead of the API record")
}

func runCreate(cmd *cobra.Command, args []string) (err error) {
	outputFile, _ := cmd.Flags().GetString("output-file")
	decode, _ := cmd.Flags().GetBool("decode")
	if decode && outputFile == "" {
		return fmt.Errorf("--decode requires --output-file")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer func() { err = s.finish(err) }()

	creator := &keys.Creator{Client: s.client, Log: s.log}
	key, err := creator.Create(cmd.Context(),
		s.scope,
		stringFlag(cmd, "key-type", s.cfg.Keys.Type),
		stringFlag(cmd, "key-algorithm", s.cfg.Keys.Algorithm),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Key created successfully!")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  ID:        %s\n", key.ID())
	fmt.Fprintf(out, "  Created:   %s\n", output.FormatTimestamp(key.ValidAfterTime))
	if key.NeverExpires() {
		fmt.Fprintln(out, "  Expires:   never")
	} else {
		fmt.Fprintf(out, "  Expires:   %s\n", output.FormatTimestamp(key.ValidBeforeTime))
	}
	fmt.Fprintf(out, "  Algorithm: %s\n", key.KeyAlgorithm)

	if outputFile == "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "The private key was not saved. Use --output-file to keep the key material.")
		return nil
	}

	if err := keys.WriteKeyFile(outputFile, key, decode); err != nil {
		return fmt.Errorf("key %s created but not saved, delete it and retry: %w", key.Name, err)
	}
	s.log.Info().Str("file", outputFile).Bool("decoded", decode).Msg("Key written")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Key written to %s\n", outputFile)
	return nil
}
