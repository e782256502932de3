package plugin

import "github.com/litesoc/litesoc-flow/runtime"

// Execution is the runtime context passed to every plugin task method.
//
// It implements context.Context, so it can be handed to anything that takes a
// context, and Host, so it can perform authenticated requests:
//
//	func (p *MyPlugin) Fetch(exec *plugin.Execution, args plugin.Input) (plugin.Output, error) {
//	    resp, err := exec.PerformAuthenticatedRequest(exec, "exampleApi", spec)
//	    ...
//	}
//
// Flow state is reachable through exec.Values(): input, steps (outputs of
// completed steps keyed by step id) and properties.
type Execution = runtime.Execution

// Host is the capability set a node needs from the runtime. Client code should
// depend on Host rather than *Execution so it can be tested with a fake.
type Host = runtime.Host

// Node identifies the executing node.
type Node = runtime.Node
