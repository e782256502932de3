package runtime

import "net/http"

// Node identifies the node (flow step) that is currently executing.
type Node struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	TypeVersion int    `json:"type_version"`
}

// RequestSpec describes one outgoing HTTP call.
// Body and Query are attached only when non-nil.
type RequestSpec struct {
	Method             string
	URL                string
	Headers            map[string]string
	Body               map[string]any
	Query              map[string]any
	ReturnFullResponse bool
}

// Response is the result of a successful call. Headers are only populated when
// the request asked for the full response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       any
}
