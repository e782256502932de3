package litesoc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

const (
	// NodeVersion is reported in the User-Agent of every request.
	NodeVersion = "1.2.0"

	DefaultBaseURL = "https://api.litesoc.io"

	// CredentialName is the credential type the client authenticates with.
	CredentialName = "liteSocApi"

	tracerName = "github.com/litesoc/litesoc-flow/plugins/litesoc"
)

// UserAgent identifies this node and its version.
func UserAgent() string {
	return "litesoc-flow-node/" + NodeVersion
}

// Result is the outcome of a successful call. Plan is set only when plan
// metadata was requested, the body is a single object and at least one plan
// header was present.
type Result struct {
	Body any
	Plan *PlanMetadata
}

// Object returns the body as an object, or nil when it is not one.
func (r Result) Object() map[string]any {
	m, _ := r.Body.(map[string]any)
	return m
}

// Client performs authenticated calls against the LiteSOC API through the
// host transport and translates failures into NodeAPIErrors.
type Client struct {
	host        plugin.Host
	baseURL     string
	includePlan bool
	l           *slog.Logger
	tracer      trace.Tracer
}

type ClientOption func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithPlanMetadata makes the client request full responses and parse the plan headers.
func WithPlanMetadata(enabled bool) ClientOption {
	return func(c *Client) {
		c.includePlan = enabled
	}
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.l = l
	}
}

func NewClient(host plugin.Host, opts ...ClientOption) *Client {
	c := &Client{
		host:    host,
		baseURL: DefaultBaseURL,
		l:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs one call to endpoint. The body is sent only for non-GET
// methods and only when it has entries; the query only when it has entries.
// Failures are returned as *plugin.NodeAPIError wrapping the raw error.
func (c *Client) Request(ctx context.Context, method, endpoint string, body, query map[string]any) (Result, error) {
	route := routeLabel(endpoint)
	ctx, span := c.tracer.Start(ctx, "litesoc.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("litesoc.route", route),
		))
	defer span.End()

	spec := plugin.RequestSpec{
		Method:             method,
		URL:                c.baseURL + endpoint,
		Headers:            map[string]string{"User-Agent": UserAgent()},
		ReturnFullResponse: c.includePlan,
	}
	if method != http.MethodGet && len(body) > 0 {
		spec.Body = body
	}
	if len(query) > 0 {
		spec.Query = query
	}

	c.l.DebugContext(ctx, "LiteSOC request", "method", method, "endpoint", endpoint)

	resp, err := c.host.PerformAuthenticatedRequest(ctx, CredentialName, spec)
	if err == nil && resp == nil {
		err = &plugin.RequestError{Message: "no response received from the LiteSOC API"}
	}
	if err != nil {
		classified := ClassifyError(err)

		RequestsTotal.WithLabelValues(method, route, "error").Inc()
		ErrorsTotal.WithLabelValues(firstNonEmpty(classified.HTTPCode, "none")).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, classified.Message)

		c.l.WarnContext(ctx, "LiteSOC request failed",
			"method", method,
			"endpoint", endpoint,
			"http_code", classified.HTTPCode,
			"error", err.Error())

		return Result{}, plugin.NewNodeAPIError(c.host.CurrentNode(), err, classified.Message, classified.HTTPCode)
	}

	RequestsTotal.WithLabelValues(method, route, "ok").Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	result := Result{Body: resp.Body}
	if c.includePlan {
		if _, ok := resp.Body.(map[string]any); ok {
			result.Plan = ParsePlanMetadata(resp.Headers)
		}
	}
	return result, nil
}
