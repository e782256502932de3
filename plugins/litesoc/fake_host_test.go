package litesoc

import (
	"context"

	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

type fakeResponse struct {
	resp *plugin.Response
	err  error
}

// fakeHost records every request and replays responses in order. The last
// response is repeated once the queue is exhausted.
type fakeHost struct {
	responses   []fakeResponse
	calls       []plugin.RequestSpec
	credentials []string
}

func (h *fakeHost) PerformAuthenticatedRequest(_ context.Context, credentialName string, spec plugin.RequestSpec) (*plugin.Response, error) {
	h.calls = append(h.calls, spec)
	h.credentials = append(h.credentials, credentialName)

	if len(h.responses) == 0 {
		return &plugin.Response{StatusCode: 200, Body: map[string]any{}}, nil
	}
	r := h.responses[0]
	if len(h.responses) > 1 {
		h.responses = h.responses[1:]
	}
	return r.resp, r.err
}

func (h *fakeHost) CurrentNode() plugin.Node {
	return plugin.Node{Name: "LiteSOC", Type: "litesoc.execute", TypeVersion: 1}
}

func respond(body any) fakeResponse {
	return fakeResponse{resp: &plugin.Response{StatusCode: 200, Body: body}}
}

func fail(err error) fakeResponse {
	return fakeResponse{err: err}
}
