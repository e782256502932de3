package litesoc

import (
	"net/http"
	"strings"

	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

// HeaderAPIKey carries the API key on every request.
const HeaderAPIKey = "X-API-Key"

// CredentialType is the liteSocApi credential: an API key sent as X-API-Key
// and checked against the health endpoint of baseURL.
func CredentialType(baseURL string) plugin.CredentialType {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return plugin.CredentialType{
		Name:             CredentialName,
		DisplayName:      "LiteSOC API",
		DocumentationURL: "https://www.litesoc.io/docs/api",
		Properties: []plugin.CredentialProperty{
			{
				Name:        "apiKey",
				DisplayName: "API Key",
				Required:    true,
				Password:    true,
				Description: "Your LiteSOC API key, found in the LiteSOC dashboard under Settings, API Keys.",
			},
		},
		Headers: map[string]string{HeaderAPIKey: "apiKey"},
		Test: &plugin.RequestSpec{
			Method:  http.MethodGet,
			URL:     strings.TrimRight(baseURL, "/") + "/health",
			Headers: map[string]string{"User-Agent": UserAgent()},
		},
	}
}
