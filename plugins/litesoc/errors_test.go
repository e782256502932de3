package litesoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/litesoc/litesoc-flow/runtime/plugin"
)

func errorBody(code, message string, extra map[string]any) map[string]any {
	e := map[string]any{}
	if code != "" {
		e["code"] = code
	}
	if message != "" {
		e["message"] = message
	}
	for k, v := range extra {
		e[k] = v
	}
	return map[string]any{"error": e}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedMessage  string
		expectedContains string
		expectedHTTPCode string
	}{
		{
			name:             "401 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 401}},
			expectedMessage:  MessageInvalidKey,
			expectedHTTPCode: "401",
		},
		{
			name:             "PLAN_RESTRICTED wins over 403 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 403, Body: errorBody(CodePlanRestricted, "This feature requires a Pro plan", nil)}},
			expectedContains: "requires a Pro or Enterprise plan",
			expectedHTTPCode: "403",
		},
		{
			name:             "RATE_LIMIT_EXCEEDED with retry_after",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 429, Body: errorBody(CodeRateLimitExceeded, "", map[string]any{"retry_after": float64(30)})}},
			expectedMessage:  "Rate limit exceeded. Please wait 30 seconds before retrying. Consider increasing your polling interval.",
			expectedHTTPCode: "429",
		},
		{
			name:             "RATE_LIMIT_EXCEEDED defaults to 60 seconds",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 429, Body: errorBody(CodeRateLimitExceeded, "", nil)}},
			expectedContains: "Rate limit exceeded. Please wait 60 seconds",
			expectedHTTPCode: "429",
		},
		{
			name:             "UNAUTHORIZED code",
			err:              &plugin.RequestError{StatusCode: 401, ResponseBody: errorBody(CodeUnauthorized, "", nil)},
			expectedMessage:  MessageUnauthorized,
			expectedHTTPCode: "401",
		},
		{
			name:             "403 without backend code",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 403}},
			expectedMessage:  MessageFeatureRestricted,
			expectedHTTPCode: "403",
		},
		{
			name:             "429 without backend code appends details",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 429}, Message: "Rate limit exceeded"},
			expectedMessage:  MessagePollingTooFast + " Details: Rate limit exceeded",
			expectedHTTPCode: "429",
		},
		{
			name:             "404 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 404}},
			expectedMessage:  MessageNotFound,
			expectedHTTPCode: "404",
		},
		{
			name:             "404 appends raw message",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 404}, Message: "Event evt_123 not found in database"},
			expectedMessage:  MessageNotFound + " Details: Event evt_123 not found in database",
			expectedHTTPCode: "404",
		},
		{
			name:             "400 uses API message",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 400, Body: errorBody("", "Invalid event type", nil)}},
			expectedMessage:  "Invalid event type",
			expectedHTTPCode: "400",
		},
		{
			name:             "400 without API message",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 400}},
			expectedMessage:  MessageInvalidRequest,
			expectedHTTPCode: "400",
		},
		{
			name:             "500 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 500}},
			expectedMessage:  MessageServiceUnavailable,
			expectedHTTPCode: "500",
		},
		{
			name:             "502 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 502}},
			expectedMessage:  MessageServiceUnavailable,
			expectedHTTPCode: "502",
		},
		{
			name:             "503 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 503}},
			expectedMessage:  MessageServiceUnavailable,
			expectedHTTPCode: "503",
		},
		{
			name:             "504 status",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 504}},
			expectedMessage:  MessageServiceUnavailable,
			expectedHTTPCode: "504",
		},
		{
			name:             "status from HTTPCode field",
			err:              &plugin.RequestError{HTTPCode: 503},
			expectedMessage:  MessageServiceUnavailable,
			expectedHTTPCode: "503",
		},
		{
			name:             "cause code wins over status code",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 404}, StatusCode: 500},
			expectedMessage:  MessageNotFound,
			expectedHTTPCode: "404",
		},
		{
			name:             "error body from response body",
			err:              &plugin.RequestError{StatusCode: 403, ResponseBody: errorBody(CodePlanRestricted, "", nil)},
			expectedMessage:  MessagePlanRestricted,
			expectedHTTPCode: "403",
		},
		{
			name:             "unknown status uses API message",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 418}, Message: "I'm a teapot"},
			expectedMessage:  "I'm a teapot",
			expectedHTTPCode: "",
		},
		{
			name:             "no status and no message",
			err:              &plugin.RequestError{},
			expectedMessage:  MessageRequestFailed,
			expectedHTTPCode: "",
		},
		{
			name:             "description is the last message fallback",
			err:              &plugin.RequestError{Description: "Connection reset"},
			expectedMessage:  "Connection reset",
			expectedHTTPCode: "",
		},
		{
			name:             "generic placeholder is never appended",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 500}, Message: MessageRequestFailed},
			expectedMessage:  MessageServiceUnavailable,
			expectedHTTPCode: "500",
		},
		{
			name:             "message already contained is not appended",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 404}, Message: "Resource not found"},
			expectedMessage:  MessageNotFound,
			expectedHTTPCode: "404",
		},
		{
			name:             "body message wins over error message",
			err:              &plugin.RequestError{Cause: &plugin.ErrorCause{Code: 404, Body: errorBody("", "Alert alt_9 does not exist", nil)}, Message: "404 Not Found"},
			expectedMessage:  MessageNotFound + " Details: Alert alt_9 does not exist",
			expectedHTTPCode: "404",
		},
		{
			name:             "plain error",
			err:              errors.New("dial tcp: connection refused"),
			expectedMessage:  "dial tcp: connection refused",
			expectedHTTPCode: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ClassifyError(tt.err)

			if tt.expectedMessage != "" && c.Message != tt.expectedMessage {
				t.Errorf("Expected message %q, got %q", tt.expectedMessage, c.Message)
			}
			if tt.expectedContains != "" && !strings.Contains(c.Message, tt.expectedContains) {
				t.Errorf("Expected message to contain %q, got %q", tt.expectedContains, c.Message)
			}
			if c.HTTPCode != tt.expectedHTTPCode {
				t.Errorf("Expected http code %q, got %q", tt.expectedHTTPCode, c.HTTPCode)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{float64(30), "30"},
		{float64(1.5), "1.5"},
		{45, "45"},
		{"120", "120"},
		{float64(0), "60"},
		{"", "60"},
		{nil, "60"},
	}

	for _, tt := range tests {
		if got := retryAfter(tt.value); got != tt.expected {
			t.Errorf("retryAfter(%v): expected %s, got %s", tt.value, tt.expected, got)
		}
	}
}
