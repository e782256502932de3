package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Inspect and test configured credentials",
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known credential types",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}
		defer app.Stop()

		for _, name := range app.Credentials.Names() {
			t, _ := app.Credentials.Type(name)
			_, configured := app.Config.Credentials[name]
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tconfigured=%v\n", name, t.DisplayName, configured)
		}
		return nil
	},
}

var credentialsTestCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Run the test request of a credential",
	Long: `Test sends the credential type's test request with the configured values
and reports whether the API accepted them.

Example:
  litesoc-flow credentials test liteSocApi
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}
		defer app.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.TestCredential(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Credential %s is valid\n", args[0])
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsListCmd)
	credentialsCmd.AddCommand(credentialsTestCmd)
}
