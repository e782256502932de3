package plugin

import "github.com/litesoc/litesoc-flow/runtime"

// Input is the type alias for map-based task input arguments.
//
// Input values come from flow YAML step arguments, literal or evaluated:
//
//	steps:
//	  - id: lookup
//	    type: litesoc.getAlert
//	    args:
//	      alert_id: ${ input.alert_id }
type Input = map[string]any

// Output is the type alias for map-based task output results.
//
// Output is stored under the step id and can be referenced by later steps:
//
//	args:
//	  actor_id: ${ steps.lookup.json.actor_id }
type Output = map[string]any

// RequestSpec describes one outgoing HTTP call made through the Host.
type RequestSpec = runtime.RequestSpec

// Response is a successful HTTP response. Body holds the decoded JSON value.
type Response = runtime.Response

// RequestError is the raw failure returned by the Host transport.
type RequestError = runtime.RequestError

// ErrorCause carries the status and decoded body of a failed call.
type ErrorCause = runtime.ErrorCause

// NodeAPIError reports a failed external API call with a user-facing message.
type NodeAPIError = runtime.NodeAPIError

// NodeOperationError reports a node-side failure such as an invalid parameter.
type NodeOperationError = runtime.NodeOperationError

var (
	NewNodeAPIError       = runtime.NewNodeAPIError
	NewNodeOperationError = runtime.NewNodeOperationError

	// DecodeInput decodes args into a struct using json tags and validates it.
	DecodeInput = runtime.DecodeInput

	// InitializeConfig applies defaults, raw values and validation to a Config.
	InitializeConfig = runtime.InitializeConfig
)

// TaskExecutor is implemented by the wrappers the container builds around
// discovered task methods. Plugin authors do not implement it.
type TaskExecutor interface {
	Execute(exec *Execution, args Input) (Output, error)
}

var _ TaskExecutor = runtime.Task(nil)
