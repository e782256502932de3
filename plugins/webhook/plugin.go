package webhook

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

// Config holds the webhook plugin configuration with declarative tags
type Config struct {
	Timeout     time.Duration `yaml:"timeout" default:"10s" validate:"gte=1s"`
	MaxRetries  int           `yaml:"max_retries" default:"2" validate:"gte=0,lte=10"`
	RetryWaitMS int           `yaml:"retry_wait_ms" default:"200" validate:"gte=0,lte=10000"`
	Debug       bool          `yaml:"debug" default:"false"`
	FailOnError bool          `yaml:"fail_on_error" default:"true"`
}

// SendInput is a single outbound notification, typically an alert or event
// forwarded from a previous litesoc step.
type SendInput struct {
	URL     string            `json:"url" validate:"required,url"`
	Method  string            `json:"method" default:"POST" validate:"oneof=POST PUT PATCH"`
	Headers map[string]string `json:"headers"`
	Body    map[string]any    `json:"body"`
}

type SendOutput struct {
	Status     string         `json:"status"`
	StatusCode int            `json:"status_code"`
	IsError    bool           `json:"is_error"`
	Body       map[string]any `json:"body"`
}

// WebhookPlugin posts JSON payloads to external endpoints (chat, ticketing,
// SOAR) from a flow.
type WebhookPlugin struct {
	Config Config // Exported so the host can set it during initialization
	client *resty.Client
	l      *slog.Logger
}

func NewPlugin(cfg Config, l *slog.Logger) *WebhookPlugin {
	return &WebhookPlugin{Config: cfg, l: l}
}

// Initialize implements the plugin.Initializer interface
// Config is already validated by the framework before this is called
func (w *WebhookPlugin) Initialize() error {
	if w.l == nil {
		w.l = slog.Default()
	}
	w.client = resty.New().
		SetTimeout(w.Config.Timeout).
		SetRetryCount(w.Config.MaxRetries).
		SetRetryWaitTime(time.Duration(w.Config.RetryWaitMS) * time.Millisecond).
		SetDebug(w.Config.Debug).
		SetHeader("Content-Type", "application/json")
	return nil
}

// Send delivers input.Body to input.URL. With fail_on_error, a non-2xx
// response fails the step with the status as HTTP code.
func (w *WebhookPlugin) Send(exec *plugin.Execution, input SendInput) (SendOutput, error) {
	if w.client == nil {
		return SendOutput{}, plugin.NewNodeOperationError(exec.CurrentNode(), "webhook plugin is not initialized")
	}

	response := map[string]any{}
	errorResponse := map[string]any{}

	req := w.client.R().
		SetContext(exec).
		SetHeaders(input.Headers).
		SetResult(&response).
		SetError(&errorResponse)
	if input.Body != nil {
		req.SetBody(input.Body)
	}

	resp, err := req.Execute(input.Method, input.URL)
	if err != nil {
		return SendOutput{}, fmt.Errorf("webhook request failed: %w", err)
	}

	output := SendOutput{
		Status:     resp.Status(),
		StatusCode: resp.StatusCode(),
		IsError:    resp.IsError(),
		Body:       response,
	}
	if resp.IsError() {
		output.Body = errorResponse
		w.l.WarnContext(exec, "Webhook rejected payload",
			"url", input.URL,
			"status", resp.StatusCode())
		if w.Config.FailOnError {
			raw := &plugin.RequestError{
				Cause:      &plugin.ErrorCause{Code: resp.StatusCode(), Body: errorResponse},
				StatusCode: resp.StatusCode(),
				Message:    resp.Status(),
			}
			return SendOutput{}, plugin.NewNodeAPIError(exec.CurrentNode(), raw,
				fmt.Sprintf("Webhook returned %s", resp.Status()),
				strconv.Itoa(resp.StatusCode()))
		}
	}

	return output, nil
}

// Shutdown implements the plugin.Shutdowner interface
func (w *WebhookPlugin) Shutdown() error {
	w.client = nil
	return nil
}
