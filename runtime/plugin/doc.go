// Package plugin is the surface a node plugin sees of the litesoc-flow host.
//
// Plugin authors import this package and never the parent runtime package:
//
//	import "github.com/litesoc/litesoc-flow/runtime/plugin"
//
// # Plugin Structure
//
// A plugin is a struct with exported task methods. Two signatures are
// discovered automatically:
//
//	func (p *P) Send(exec *plugin.Execution, args plugin.Input) (plugin.Output, error)
//	func (p *P) Send(exec *plugin.Execution, in SendInput) (SendOutput, error)
//
// The second form decodes the step args into SendInput using its json tags and
// validates it with its validate tags before the method runs. Registering the
// plugin as "mail" exposes the method as the task "mail.send".
//
// # Configuration
//
// Plugins define a Config struct with declarative tags. The host applies
// defaults, merges the values from the plugins section of the config file
// (resolving ${ENV_VAR} references) and validates the result:
//
//	type Config struct {
//	    BaseURL string `yaml:"base_url" default:"https://api.example.com" validate:"url_format"`
//	}
//
// # Talking to External APIs
//
// Plugins never build HTTP clients of their own. The Execution passed to every
// task is a Host: it performs requests with a named credential injected, and
// reports the node currently executing so errors can be attributed to it.
//
//	resp, err := exec.PerformAuthenticatedRequest(exec, "exampleApi", plugin.RequestSpec{
//	    Method: http.MethodGet,
//	    URL:    "https://api.example.com/things",
//	})
//
// Failed calls come back as *RequestError. Plugins translate them into a
// *NodeAPIError with a user-facing message; parameter problems detected before
// a call are reported as *NodeOperationError.
//
// # Credentials
//
// A plugin implementing CredentialProvider declares the credential types it
// needs. The host stores their values and injects them as headers.
package plugin
