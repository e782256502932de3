package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	_ context.Context = &Execution{}
	_ Host            = &Execution{}
)

// Execution is the state of one flow run. It is passed to every task method,
// implements context.Context and acts as the Host for the node being executed.
type Execution struct {
	ID        string
	Flow      *Flow
	Container *Container
	Requester AuthenticatedRequester
	Logger    *slog.Logger
	values    map[string]any
	node      Node
	ctx       context.Context
}

func NewExecution(ctx context.Context, flow *Flow, container *Container, requester AuthenticatedRequester, l *slog.Logger) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	if l == nil {
		l = slog.Default()
	}
	return &Execution{
		ID:        uuid.New().String(),
		Flow:      flow,
		Container: container,
		Requester: requester,
		Logger:    l,
		values: map[string]any{
			"input":      map[string]any{},
			"steps":      map[string]any{},
			"properties": map[string]any{},
		},
		ctx: ctx,
	}
}

// context.Context implementation delegates to the embedded ctx so that real
// timeouts and cancellations propagate into plugin HTTP calls.

func (e *Execution) Deadline() (deadline time.Time, ok bool) {
	return e.ctx.Deadline()
}

func (e *Execution) Done() <-chan struct{} {
	return e.ctx.Done()
}

func (e *Execution) Err() error {
	return e.ctx.Err()
}

func (e *Execution) Value(key any) any {
	if k, ok := key.(string); ok {
		if v, found := e.values[k]; found {
			return v
		}
	}
	return e.ctx.Value(key)
}

// WithNode returns a shallow copy of the Execution bound to node.
// Mirrors the http.Request.WithContext pattern.
func (e *Execution) WithNode(node Node) *Execution {
	c := *e
	c.node = node
	return &c
}

// CurrentNode returns the identity of the node being executed.
func (e *Execution) CurrentNode() Node {
	return e.node
}

// PerformAuthenticatedRequest delegates to the host transport.
func (e *Execution) PerformAuthenticatedRequest(ctx context.Context, credentialName string, spec RequestSpec) (*Response, error) {
	if e.Requester == nil {
		return nil, fmt.Errorf("no authenticated requester configured")
	}
	return e.Requester.PerformAuthenticatedRequest(ctx, credentialName, spec)
}

// SetInput stores the flow input under "input".
func (e *Execution) SetInput(input map[string]any) {
	if input == nil {
		input = map[string]any{}
	}
	e.values["input"] = input
}

// SetStepResult records a step's output under steps.<id>.
func (e *Execution) SetStepResult(stepID string, result map[string]any) {
	e.steps()[stepID] = result
}

// StepResult returns the recorded output of stepID.
func (e *Execution) StepResult(stepID string) (map[string]any, bool) {
	r, ok := e.steps()[stepID].(map[string]any)
	return r, ok
}

func (e *Execution) steps() map[string]any {
	return e.values["steps"].(map[string]any)
}

// Values returns the expression environment: input, steps and properties.
func (e *Execution) Values() map[string]any {
	return e.values
}

// SetProperties merges global and flow properties, flow overriding global.
// ${VAR} references are resolved in both.
func (e *Execution) SetProperties(global map[string]any) error {
	props, err := resolveEnvValues(global)
	if err != nil {
		return fmt.Errorf("property %w", err)
	}
	if e.Flow != nil {
		flowProps, err := resolveEnvValues(e.Flow.Properties)
		if err != nil {
			return fmt.Errorf("flow %s property %w", e.Flow.ID, err)
		}
		for k, v := range flowProps {
			props[k] = v
		}
	}
	e.values["properties"] = props
	return nil
}

// envVarPattern matches ${VAR} and ${VAR:default} syntax
var envVarPattern = regexp.MustCompile(`^\$\{([A-Z_][A-Z0-9_]*)(:[^}]*)?\}$`)

// resolveEnvVar resolves environment variable references in config and property values
func resolveEnvVar(value any) (any, error) {
	strValue, ok := value.(string)
	if !ok {
		return value, nil
	}

	matches := envVarPattern.FindStringSubmatch(strValue)
	if matches == nil {
		return value, nil
	}

	varName := matches[1]
	defaultPart := matches[2]

	if envValue, exists := os.LookupEnv(varName); exists {
		return envValue, nil
	}

	if defaultPart != "" {
		return strings.TrimPrefix(defaultPart, ":"), nil
	}

	return nil, fmt.Errorf("required environment variable not set: %s", varName)
}
