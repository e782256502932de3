package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var flowsDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve flows over HTTP",
	Long: `Serve loads every flow in the flows directory and exposes them as
POST /flows/{id}/run, together with /health and /metrics.

Example:
  litesoc-flow serve --config litesoc-flow.yaml
  litesoc-flow serve --flows ./examples/flows
`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flowsDir, "flows", "", "Override flows_dir from the config")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}

	dir := app.Config.FlowsDir
	if flowsDir != "" {
		dir = flowsDir
	}
	if err := app.LoadFlows(dir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx)
}
