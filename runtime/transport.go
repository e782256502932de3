package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// TransportConfig holds the host HTTP transport configuration
type TransportConfig struct {
	Timeout     time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
	MaxRetries  int           `yaml:"max_retries" default:"0" validate:"gte=0,lte=10"`
	RetryWaitMS int           `yaml:"retry_wait_ms" default:"100" validate:"gte=0,lte=10000"`
	Debug       bool          `yaml:"debug" default:"false"`
}

// RestyRequester is the host's AuthenticatedRequester backed by a resty client.
type RestyRequester struct {
	client      *resty.Client
	credentials *CredentialStore
	l           *slog.Logger
}

func NewRestyRequester(cfg TransportConfig, credentials *CredentialStore, l *slog.Logger) *RestyRequester {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Duration(cfg.RetryWaitMS) * time.Millisecond).
		SetDebug(cfg.Debug)

	return &RestyRequester{
		client:      client,
		credentials: credentials,
		l:           l,
	}
}

// PerformAuthenticatedRequest injects the credential's headers and executes spec.
// Non-2xx responses and transport failures are returned as *RequestError.
func (r *RestyRequester) PerformAuthenticatedRequest(ctx context.Context, credentialName string, spec RequestSpec) (*Response, error) {
	authHeaders, err := r.credentials.AuthHeaders(credentialName)
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Err: err}
	}

	req := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeaders(spec.Headers).
		SetHeaders(authHeaders)

	if spec.Query != nil {
		req.SetQueryParams(ToStringValueMap(spec.Query))
	}
	if spec.Body != nil {
		req.SetBody(spec.Body)
	}

	resp, err := req.Execute(spec.Method, spec.URL)
	if err != nil {
		r.l.WarnContext(ctx, "HTTP request failed",
			"method", spec.Method,
			"url", spec.URL,
			"error", err)
		return nil, &RequestError{
			Message: fmt.Sprintf("HTTP request failed: %v", err),
			Err:     err,
		}
	}

	if resp.IsError() {
		body := decodeErrorBody(resp.Body())
		return nil, &RequestError{
			Cause:        &ErrorCause{Code: resp.StatusCode(), Body: body},
			StatusCode:   resp.StatusCode(),
			Message:      resp.Status(),
			ResponseBody: body,
		}
	}

	out := &Response{StatusCode: resp.StatusCode()}
	if spec.ReturnFullResponse {
		out.Headers = resp.Header()
	}

	if raw := resp.Body(); len(raw) > 0 {
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, &RequestError{
				StatusCode: resp.StatusCode(),
				Message:    fmt.Sprintf("invalid JSON response: %v", err),
				Err:        err,
			}
		}
		out.Body = decoded
	} else {
		out.Body = map[string]any{}
	}

	return out, nil
}

// decodeErrorBody returns the JSON object in raw, or nil when raw is not one.
func decodeErrorBody(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body
}
