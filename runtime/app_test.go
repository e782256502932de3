package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	cfg, err := LoadAppConfig("")
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected Addr=':8080', got '%s'", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Expected ShutdownTimeout=10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Expected info/json logging, got %+v", cfg.Logging)
	}
	if cfg.Transport.Timeout != 30*time.Second {
		t.Errorf("Expected transport timeout 30s, got %v", cfg.Transport.Timeout)
	}
	if cfg.FlowsDir != "flows" {
		t.Errorf("Expected FlowsDir='flows', got '%s'", cfg.FlowsDir)
	}
}

const appConfigYAML = `server:
  addr: 127.0.0.1:9090
  shutdown_timeout: 2s
logging:
  level: debug
  format: text
transport:
  timeout: 5s
  max_retries: 2
flows_dir: ./my-flows
properties:
  env: staging
credentials:
  securityApi:
    apiKey: ${SECURITY_API_KEY}
    workspace: ${SECURITY_WORKSPACE:default}
plugins:
  litesoc:
    base_url: https://api.example.com
`

func TestLoadAppConfig_File(t *testing.T) {
	t.Setenv("SECURITY_API_KEY", "sk_live_123")
	path := writeFile(t, t.TempDir(), "app.yaml", appConfigYAML)

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:9090" || cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.Transport.Timeout != 5*time.Second || cfg.Transport.MaxRetries != 2 {
		t.Errorf("Unexpected transport config: %+v", cfg.Transport)
	}
	if cfg.Transport.RetryWaitMS != 100 {
		t.Errorf("Expected default RetryWaitMS=100, got %d", cfg.Transport.RetryWaitMS)
	}
	if cfg.FlowsDir != "./my-flows" {
		t.Errorf("Expected FlowsDir='./my-flows', got '%s'", cfg.FlowsDir)
	}
	if cfg.Credentials["securityApi"]["apiKey"] != "sk_live_123" {
		t.Errorf("Expected apiKey from env, got '%s'", cfg.Credentials["securityApi"]["apiKey"])
	}
	if cfg.Credentials["securityApi"]["workspace"] != "default" {
		t.Errorf("Expected workspace default, got '%s'", cfg.Credentials["securityApi"]["workspace"])
	}
	if cfg.Plugins["litesoc"]["base_url"] != "https://api.example.com" {
		t.Errorf("Unexpected plugin config: %v", cfg.Plugins)
	}
}

func TestLoadAppConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		path      string
		shouldErr string
	}{
		{"missing file", filepath.Join(dir, "missing.yaml"), "error reading config file"},
		{"invalid yaml", writeFile(t, dir, "bad.yaml", "server: [1"), "error unmarshalling config"},
		{"invalid level", writeFile(t, dir, "level.yaml", "logging:\n  level: trace\n"), "Level"},
		{"invalid addr", writeFile(t, dir, "addr.yaml", "server:\n  addr: localhost\n"), "Addr"},
		{"missing env", writeFile(t, dir, "env.yaml", "credentials:\n  api:\n    key: ${UNSET_TEST_KEY_VAR}\n"), "credential api.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAppConfig(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.shouldErr) {
				t.Errorf("Expected error containing '%s', got: %v", tt.shouldErr, err)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	l.Info("hidden")
	l.Warn("Rate limited", "http_code", "429")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON log line: %v", err)
	}
	if entry["msg"] != "Rate limited" || entry["http_code"] != "429" {
		t.Errorf("Unexpected log entry: %v", entry)
	}

	buf.Reset()
	NewLogger(LoggingConfig{Level: "debug", Format: "text"}, &buf).Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("Expected text debug line, got '%s'", buf.String())
	}
}

func TestApp_StartRegistersCredentials(t *testing.T) {
	cfg, _ := LoadAppConfig("")
	cfg.Credentials = map[string]map[string]string{"alertsApi": {"token": "t"}}

	app := NewApp(cfg, NewLogger(cfg.Logging, &bytes.Buffer{}))
	app.RegisterPlugin("alerts", &alertsPlugin{})
	if err := app.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	headers, err := app.Credentials.AuthHeaders("alertsApi")
	if err != nil || headers["X-Token"] != "t" {
		t.Errorf("Expected configured credential, got %v (%v)", headers, err)
	}

	cfg.Credentials = map[string]map[string]string{"unknownApi": {"k": "v"}}
	other := NewApp(cfg, NewLogger(cfg.Logging, &bytes.Buffer{}))
	if err := other.Start(); err == nil {
		t.Error("Expected error for credential without a registered type")
	}
}

func TestApp_LoadFlowsAndRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.yaml", "id: greet\nsteps:\n  - id: t\n    type: track.track\n    args:\n      actor_id: ${ input.who }\noutput:\n  actor: ${ steps.t.json.actor }\n")

	app := newTestApp(t)
	if err := app.LoadFlows(dir); err != nil {
		t.Fatalf("LoadFlows failed: %v", err)
	}

	id, out, err := app.RunFlow(context.Background(), "greet", map[string]any{"who": "user_9"})
	if err != nil {
		t.Fatalf("RunFlow failed: %v", err)
	}
	if id == "" {
		t.Error("Expected execution id")
	}
	if out["actor"] != "user_9" {
		t.Errorf("Expected actor 'user_9', got %v", out["actor"])
	}

	if _, _, err := app.RunFlow(context.Background(), "nope", nil); err == nil {
		t.Error("Expected error for unknown flow")
	}
	if err := app.RegisterFlow(Flow{}); err == nil {
		t.Error("Expected error registering invalid flow")
	}
}

func TestApp_Serve(t *testing.T) {
	app := newTestApp(t)
	app.Config.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func TestResolveEnvVar(t *testing.T) {
	t.Setenv("LITESOC_TEST_VAR", "value")
	os.Unsetenv("LITESOC_TEST_UNSET")

	tests := []struct {
		name      string
		in        any
		expected  any
		shouldErr bool
	}{
		{"plain", "literal", "literal", false},
		{"not a string", 42, 42, false},
		{"set", "${LITESOC_TEST_VAR}", "value", false},
		{"default", "${LITESOC_TEST_UNSET:fallback}", "fallback", false},
		{"empty default", "${LITESOC_TEST_UNSET:}", "", false},
		{"embedded is literal", "prefix-${LITESOC_TEST_VAR}", "prefix-${LITESOC_TEST_VAR}", false},
		{"lowercase is literal", "${lower}", "${lower}", false},
		{"unset", "${LITESOC_TEST_UNSET}", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveEnvVar(tt.in)
			if tt.shouldErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
