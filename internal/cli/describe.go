package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/litesoc/litesoc-flow/plugins/litesoc"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the LiteSOC node description and available tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap()
		if err != nil {
			return err
		}
		defer app.Stop()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"node":  litesoc.Description,
			"tasks": app.Container.TaskNames(),
		})
	},
}
