package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the host configuration file (litesoc-flow.yaml).
type AppConfig struct {
	Server      ServerConfig                 `yaml:"server"`
	Logging     LoggingConfig                `yaml:"logging"`
	Transport   TransportConfig              `yaml:"transport"`
	FlowsDir    string                       `yaml:"flows_dir" default:"flows"`
	Properties  map[string]any               `yaml:"properties"`
	Credentials map[string]map[string]string `yaml:"credentials"`
	Plugins     map[string]map[string]any    `yaml:"plugins"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8080" validate:"hostname_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"json" validate:"oneof=json text"`
}

// LoadAppConfig reads path, applies defaults, resolves ${VAR} references in
// credential values and validates the result. An empty path yields defaults.
func LoadAppConfig(path string) (AppConfig, error) {
	var cfg AppConfig
	if err := ApplyDefaults(&cfg); err != nil {
		return AppConfig{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("error unmarshalling config: %w", err)
		}
	}

	for name, values := range cfg.Credentials {
		for k, v := range values {
			rv, err := resolveEnvVar(v)
			if err != nil {
				return AppConfig{}, fmt.Errorf("credential %s.%s: %w", name, k, err)
			}
			values[k] = fmt.Sprint(rv)
		}
	}

	if err := validateStruct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the slog logger described by cfg.
func NewLogger(cfg LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// App wires the container, credentials, transport and flows together.
type App struct {
	Config      AppConfig
	Container   *Container
	Credentials *CredentialStore
	Requester   AuthenticatedRequester
	Executor    *Executor
	Flows       map[string]Flow
	Logger      *slog.Logger
}

func NewApp(cfg AppConfig, l *slog.Logger) *App {
	credentials := NewCredentialStore()
	return &App{
		Config:      cfg,
		Container:   NewContainer(),
		Credentials: credentials,
		Requester:   NewRestyRequester(cfg.Transport, credentials, l),
		Executor:    NewExecutor(l, NewExpressionEvaluator()),
		Flows:       make(map[string]Flow),
		Logger:      l,
	}
}

// RegisterPlugin registers plugin under name. Its config must already be
// initialized, see InitializeConfig.
func (a *App) RegisterPlugin(name string, plugin any) error {
	return a.Container.RegisterPlugin(name, plugin)
}

// PluginConfig returns the raw config values for the plugin name.
func (a *App) PluginConfig(name string) map[string]any {
	return a.Config.Plugins[name]
}

// Start initializes plugins, registers their credential types and stores the
// configured credentials.
func (a *App) Start() error {
	if err := a.Container.Initialize(); err != nil {
		return err
	}

	for _, t := range a.Container.CredentialTypes() {
		a.Credentials.RegisterType(t)
	}

	for name, values := range a.Config.Credentials {
		if err := a.Credentials.Set(name, values); err != nil {
			return err
		}
	}
	return nil
}

// Stop shuts plugins down.
func (a *App) Stop() error {
	return a.Container.Shutdown()
}

// LoadFlows loads all flows from dir.
func (a *App) LoadFlows(dir string) error {
	flows, err := NewFlowLoader().LoadDir(dir)
	if err != nil {
		return err
	}
	for id, flow := range flows {
		a.Flows[id] = flow
	}
	a.Logger.Info("Flows loaded", "count", len(flows), "dir", dir)
	return nil
}

// RegisterFlow adds or replaces a flow.
func (a *App) RegisterFlow(flow Flow) error {
	if err := flow.Validate(); err != nil {
		return err
	}
	a.Flows[flow.ID] = flow
	return nil
}

// RunFlow executes the flow id with input and returns its output.
func (a *App) RunFlow(ctx context.Context, id string, input map[string]any) (string, map[string]any, error) {
	flow, ok := a.Flows[id]
	if !ok {
		return "", nil, fmt.Errorf("flow %s not found", id)
	}

	execution := NewExecution(ctx, &flow, a.Container, a.Requester, a.Logger)
	execution.SetInput(input)
	if err := execution.SetProperties(a.Config.Properties); err != nil {
		return execution.ID, nil, err
	}

	output, err := a.Executor.Run(execution)
	return execution.ID, output, err
}

// TestCredential runs the test request of the named credential.
func (a *App) TestCredential(ctx context.Context, name string) error {
	return a.Credentials.Test(ctx, a.Requester, name)
}

// Serve runs the HTTP trigger on the configured address until ctx is done,
// then shuts the server and the plugins down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.Config.Server.Addr,
		Handler: NewHttpHandler(a),
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", "addr", srv.Addr, "flows", len(a.Flows))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		a.Logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return a.Stop()
}
