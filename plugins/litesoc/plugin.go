package litesoc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

// Config holds the LiteSOC plugin configuration with declarative tags
type Config struct {
	BaseURL             string `yaml:"base_url" default:"https://api.litesoc.io" validate:"url_format"`
	IncludePlanMetadata bool   `yaml:"include_plan_metadata" default:"true"`
	PaginationCursor    string `yaml:"pagination_cursor" default:"offset" validate:"oneof=offset page"`
}

// LiteSocPlugin exposes the LiteSOC node as flow tasks (litesoc.createEvent,
// litesoc.listAlerts, ...) and as a single item-based litesoc.execute task.
type LiteSocPlugin struct {
	Config Config // Exported so the host can set it during initialization
	l      *slog.Logger
}

func NewPlugin(cfg Config, l *slog.Logger) *LiteSocPlugin {
	return &LiteSocPlugin{Config: cfg, l: l}
}

// Initialize implements the plugin.Initializer interface
func (p *LiteSocPlugin) Initialize() error {
	if p.l == nil {
		p.l = slog.Default()
	}
	if p.Config.BaseURL == "" {
		p.Config.BaseURL = DefaultBaseURL
	}
	p.l.Info("LiteSOC plugin initialized",
		"base_url", p.Config.BaseURL,
		"pagination_cursor", p.Config.PaginationCursor,
		"plan_metadata", p.Config.IncludePlanMetadata)
	return nil
}

// CredentialTypes implements the plugin.CredentialProvider interface
func (p *LiteSocPlugin) CredentialTypes() []plugin.CredentialType {
	return []plugin.CredentialType{CredentialType(p.Config.BaseURL)}
}

func (p *LiteSocPlugin) operations(host plugin.Host) *operations {
	client := NewClient(host,
		WithBaseURL(firstNonEmpty(p.Config.BaseURL, DefaultBaseURL)),
		WithPlanMetadata(p.Config.IncludePlanMetadata),
		WithLogger(p.logger()))
	return &operations{
		client:    client,
		paginator: NewPaginator(client, Cursor(p.Config.PaginationCursor)),
	}
}

func (p *LiteSocPlugin) logger() *slog.Logger {
	if p.l == nil {
		return slog.Default()
	}
	return p.l
}

// ItemOutput is the output of single-item operations.
type ItemOutput struct {
	JSON any           `json:"json"`
	Plan *PlanMetadata `json:"plan,omitempty"`
}

// ListOutput is the output of list operations.
type ListOutput struct {
	Items []map[string]any `json:"items"`
	Count int              `json:"count"`
}

func itemOutput(node plugin.Node, result Result, err error) (ItemOutput, error) {
	if err != nil {
		return ItemOutput{}, nodeError(node, err)
	}
	return ItemOutput{JSON: result.Body, Plan: result.Plan}, nil
}

func listOutput(node plugin.Node, items []map[string]any, err error) (ListOutput, error) {
	if err != nil {
		return ListOutput{}, nodeError(node, err)
	}
	return ListOutput{Items: items, Count: len(items)}, nil
}

// CreateEvent records a security event: litesoc.createEvent
func (p *LiteSocPlugin) CreateEvent(exec *plugin.Execution, in CreateEventInput) (ItemOutput, error) {
	result, err := p.operations(exec).createEvent(exec, in)
	return itemOutput(exec.CurrentNode(), result, err)
}

func (p *LiteSocPlugin) GetEvent(exec *plugin.Execution, in GetEventInput) (ItemOutput, error) {
	result, err := p.operations(exec).getEvent(exec, in)
	return itemOutput(exec.CurrentNode(), result, err)
}

func (p *LiteSocPlugin) ListEvents(exec *plugin.Execution, in ListEventsInput) (ListOutput, error) {
	items, err := p.operations(exec).listEvents(exec, in)
	return listOutput(exec.CurrentNode(), items, err)
}

func (p *LiteSocPlugin) GetAlert(exec *plugin.Execution, in GetAlertInput) (ItemOutput, error) {
	result, err := p.operations(exec).getAlert(exec, in)
	return itemOutput(exec.CurrentNode(), result, err)
}

func (p *LiteSocPlugin) ListAlerts(exec *plugin.Execution, in ListAlertsInput) (ListOutput, error) {
	items, err := p.operations(exec).listAlerts(exec, in)
	return listOutput(exec.CurrentNode(), items, err)
}

func (p *LiteSocPlugin) ResolveAlert(exec *plugin.Execution, in ResolveAlertInput) (ItemOutput, error) {
	result, err := p.operations(exec).resolveAlert(exec, in)
	return itemOutput(exec.CurrentNode(), result, err)
}

func (p *LiteSocPlugin) MarkAlertSafe(exec *plugin.Execution, in MarkAlertSafeInput) (ItemOutput, error) {
	result, err := p.operations(exec).markAlertSafe(exec, in)
	return itemOutput(exec.CurrentNode(), result, err)
}

// ExecuteInput runs one resource operation once per item. Each item holds
// the parameters of that run, keyed like the typed task inputs.
type ExecuteInput struct {
	Resource       string           `json:"resource" validate:"required"`
	Operation      string           `json:"operation" validate:"required"`
	Items          []map[string]any `json:"items"`
	ContinueOnFail bool             `json:"continue_on_fail"`
}

// OutputItem is one output record, paired with the index of the input item
// that produced it.
type OutputItem struct {
	JSON       map[string]any `json:"json"`
	PairedItem int            `json:"pairedItem"`
}

type ExecuteOutput struct {
	Items []OutputItem `json:"items"`
}

// Execute runs an operation over a batch of items: litesoc.execute
//
// Object responses produce one output item and arrays one item per element.
// With ContinueOnFail a failed item yields {"error": message} and the batch
// goes on; otherwise the first failure aborts it. No items means one run with
// empty parameters.
func (p *LiteSocPlugin) Execute(exec *plugin.Execution, in ExecuteInput) (ExecuteOutput, error) {
	ops := p.operations(exec)
	node := exec.CurrentNode()

	items := in.Items
	if len(items) == 0 {
		items = []map[string]any{{}}
	}

	out := ExecuteOutput{Items: []OutputItem{}}
	for i, params := range items {
		records, err := runItem(exec, ops, in.Resource, in.Operation, params)
		if err != nil {
			err = nodeError(node, err)
			if !in.ContinueOnFail {
				return ExecuteOutput{}, err
			}
			p.logger().WarnContext(exec, "LiteSOC item failed, continuing",
				"item", i,
				"error", err.Error())
			out.Items = append(out.Items, OutputItem{
				JSON:       map[string]any{"error": err.Error()},
				PairedItem: i,
			})
			continue
		}

		for _, r := range records {
			out.Items = append(out.Items, OutputItem{JSON: r, PairedItem: i})
		}
	}
	return out, nil
}

func runItem(ctx context.Context, ops *operations, resource, operation string, params map[string]any) ([]map[string]any, error) {
	if _, err := Description.Operation(resource, operation); err != nil {
		return nil, err
	}

	switch resource + ":" + operation {
	case ResourceEvent + ":" + OperationCreate:
		return runSingle(ctx, params, ops.createEvent)
	case ResourceEvent + ":" + OperationGet:
		return runSingle(ctx, params, ops.getEvent)
	case ResourceEvent + ":" + OperationGetAll:
		return runList(ctx, params, ops.listEvents)
	case ResourceAlert + ":" + OperationGet:
		return runSingle(ctx, params, ops.getAlert)
	case ResourceAlert + ":" + OperationGetAll:
		return runList(ctx, params, ops.listAlerts)
	case ResourceAlert + ":" + OperationResolve:
		return runSingle(ctx, params, ops.resolveAlert)
	case ResourceAlert + ":" + OperationMarkSafe:
		return runSingle(ctx, params, ops.markAlertSafe)
	}
	return nil, errors.New("operation " + resource + ":" + operation + " has no handler")
}

func runSingle[In any](ctx context.Context, params map[string]any, op func(context.Context, In) (Result, error)) ([]map[string]any, error) {
	var in In
	if err := plugin.DecodeInput(params, &in); err != nil {
		return nil, err
	}
	result, err := op(ctx, in)
	if err != nil {
		return nil, err
	}

	switch body := result.Body.(type) {
	case map[string]any:
		return []map[string]any{body}, nil
	case []any:
		return toObjects(body), nil
	}
	return []map[string]any{}, nil
}

func runList[In any](ctx context.Context, params map[string]any, op func(context.Context, In) ([]map[string]any, error)) ([]map[string]any, error) {
	var in In
	if err := plugin.DecodeInput(params, &in); err != nil {
		return nil, err
	}
	return op(ctx, in)
}

// nodeError attributes err to node. API failures are already NodeAPIErrors;
// anything else is an operation error.
func nodeError(node plugin.Node, err error) error {
	var apiErr *plugin.NodeAPIError
	if errors.As(err, &apiErr) {
		return err
	}
	var opErr *plugin.NodeOperationError
	if errors.As(err, &opErr) {
		return err
	}
	return &plugin.NodeOperationError{Node: node, Message: err.Error(), Err: err}
}
