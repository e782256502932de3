package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litesoc/litesoc-flow/runtime"
)

var (
	runInput     string
	runInputFile string
)

var runCmd = &cobra.Command{
	Use:   "run <flow-file>",
	Short: "Run a single flow once and print its output",
	Long: `Run loads one flow file, executes it with the given JSON input and
prints the flow output as JSON.

Example:
  litesoc-flow run examples/flows/track-login-failure.yaml --input '{"user_id":"u_1"}'
  litesoc-flow run examples/flows/escalate-critical-alerts.yaml --input-file input.json
`,
	Args: cobra.ExactArgs(1),
	RunE: runFlow,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "Flow input as a JSON object")
	runCmd.Flags().StringVar(&runInputFile, "input-file", "", "Path to a JSON file with the flow input")
}

func runFlow(cmd *cobra.Command, args []string) error {
	input, err := readInput()
	if err != nil {
		return err
	}

	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Stop()

	flow, err := runtime.NewFlowLoader().Load(args[0])
	if err != nil {
		return err
	}
	if err := app.RegisterFlow(flow); err != nil {
		return err
	}

	_, output, err := app.RunFlow(context.Background(), flow.ID, input)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func readInput() (map[string]any, error) {
	raw := []byte(runInput)
	if runInputFile != "" {
		data, err := os.ReadFile(runInputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		raw = data
	}

	input := map[string]any{}
	if len(raw) == 0 {
		return input, nil
	}
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("input must be a JSON object: %w", err)
	}
	return input, nil
}
