package runtime

import "context"

// Initializer interface allows plugins to perform startup initialization.
// Plugins implementing this interface will have Initialize called at container startup.
type Initializer interface {
	// Initialize is called once when the container starts up.
	// Config is already set and validated on the plugin struct.
	Initialize() error
}

// Shutdowner interface allows plugins to perform graceful shutdown.
type Shutdowner interface {
	Shutdown() error
}

// CredentialProvider is implemented by plugins that declare credential types.
// The container collects them at registration so the host can store and test
// credentials of that type.
type CredentialProvider interface {
	CredentialTypes() []CredentialType
}

// AuthenticatedRequester performs an HTTP call with the named credential
// injected. It is the only transport capability plugins get from the host.
type AuthenticatedRequester interface {
	PerformAuthenticatedRequest(ctx context.Context, credentialName string, spec RequestSpec) (*Response, error)
}

// Host is what a node sees of the runtime: an authenticated transport and
// the identity of the node currently executing.
type Host interface {
	AuthenticatedRequester
	CurrentNode() Node
}
