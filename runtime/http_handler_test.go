package runtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := LoadAppConfig("")
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	cfg.Properties = map[string]any{"env": "test"}

	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := app.RegisterPlugin("track", &trackPlugin{}); err != nil {
		t.Fatalf("RegisterPlugin failed: %v", err)
	}
	if err := app.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	flows := []Flow{
		{
			ID:     "track",
			Steps:  []Step{{ID: "track", Type: "track.track", Args: map[string]any{"actor_id": "${ input.actor }"}}},
			Output: map[string]any{"actor": "${ steps.track.json.actor }", "env": "${ properties.env }"},
		},
		{ID: "reject", Steps: []Step{{ID: "reject", Type: "track.reject"}}},
		{ID: "missing", Steps: []Step{{ID: "missing", Type: "track.unknown"}}},
		{ID: "slow", Steps: []Step{{ID: "wait", Type: "track.wait", Timeout: 10 * time.Millisecond}}},
	}
	for _, f := range flows {
		if err := app.RegisterFlow(f); err != nil {
			t.Fatalf("RegisterFlow failed: %v", err)
		}
	}
	return app
}

func serve(t *testing.T, app *App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	NewHttpHandler(app).ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
	}
	return rec.Code, decoded
}

func TestHttpHandler_Health(t *testing.T) {
	code, body := serve(t, newTestApp(t), http.MethodGet, "/health", "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("Expected 200 ok, got %d %v", code, body)
	}
}

func TestHttpHandler_Metrics(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	NewHttpHandler(newTestApp(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("Expected Go runtime metrics in output")
	}
}

func TestHttpHandler_ListFlows(t *testing.T) {
	code, body := serve(t, newTestApp(t), http.MethodGet, "/flows", "")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}
	if flows, _ := body["flows"].([]any); len(flows) != 4 {
		t.Errorf("Expected 4 flows, got %v", body["flows"])
	}
}

func TestHttpHandler_RunFlow(t *testing.T) {
	code, body := serve(t, newTestApp(t), http.MethodPost, "/flows/track/run", `{"actor":"user_1"}`)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", code, body)
	}
	if id, _ := body["execution_id"].(string); id == "" {
		t.Error("Expected an execution id")
	}
	output, _ := body["output"].(map[string]any)
	if output["actor"] != "user_1" || output["env"] != "test" {
		t.Errorf("Unexpected output: %v", output)
	}
}

func TestHttpHandler_RunFlowErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown flow", "/flows/nope/run", "", http.StatusNotFound, ""},
		{"malformed body", "/flows/track/run", `{"actor":`, http.StatusBadRequest, ""},
		{"empty body", "/flows/track/run", "", http.StatusOK, ""},
		{"api error", "/flows/reject/run", "", http.StatusBadGateway, "API_ERROR"},
		{"task not found", "/flows/missing/run", "", http.StatusInternalServerError, "TASK_NOT_FOUND"},
		{"timeout", "/flows/slow/run", "", http.StatusGatewayTimeout, "DEADLINE_EXCEEDED"},
	}

	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, app, http.MethodPost, tt.path, tt.body)
			if code != tt.status {
				t.Errorf("Expected status %d, got %d: %v", tt.status, code, body)
			}
			if tt.code == "" {
				return
			}
			errMap, _ := body["error"].(map[string]any)
			if errMap["code"] != tt.code {
				t.Errorf("Expected error code %s, got %v", tt.code, errMap)
			}
		})
	}
}

func TestFlowErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"operation", &FlowError{Type: ErrorTypePermanent, Code: string(ErrorCodeOperationError)}, http.StatusUnprocessableEntity},
		{"api", &FlowError{Type: ErrorTypeTransient, Code: string(ErrorCodeAPIError)}, http.StatusBadGateway},
		{"timeout", &FlowError{Type: ErrorTypeTimeout, Code: string(ErrorCodeDeadlineExceeded)}, http.StatusGatewayTimeout},
		{"runtime", &FlowError{Type: ErrorTypePermanent, Code: string(ErrorCodeRuntimeError)}, http.StatusInternalServerError},
		{"not a flow error", io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flowErrorStatus(tt.err); got != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, got)
			}
		})
	}
}
