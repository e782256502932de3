package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "litesoc-flow",
	Short: "litesoc-flow - LiteSOC workflow runner",
	Long: `litesoc-flow runs YAML-defined flows whose steps call the LiteSOC API:
tracking security events, listing alerts and resolving them.

Flows can be triggered over HTTP (serve) or run once from the command line (run).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "litesoc-flow.yaml", "Path to the app config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Override logging.format (json, text)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(describeCmd)
}
