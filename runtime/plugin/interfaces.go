package plugin

import (
	"github.com/litesoc/litesoc-flow/runtime"
)

// Initializer is a type alias to runtime.Initializer.
// Plugins implementing it have Initialize() called at startup, after their
// Config has been set and validated. An error aborts startup.
type Initializer = runtime.Initializer

// Shutdowner is a type alias to runtime.Shutdowner.
// Shutdown is called in reverse registration order.
type Shutdowner = runtime.Shutdowner

// CredentialProvider is implemented by plugins that declare credential types.
//
//	func (p *MyPlugin) CredentialTypes() []plugin.CredentialType {
//	    return []plugin.CredentialType{{
//	        Name:       "exampleApi",
//	        Properties: []plugin.CredentialProperty{{Name: "apiKey", Required: true, Password: true}},
//	        Headers:    map[string]string{"X-API-Key": "apiKey"},
//	    }}
//	}
type CredentialProvider = runtime.CredentialProvider

type CredentialType = runtime.CredentialType

type CredentialProperty = runtime.CredentialProperty
