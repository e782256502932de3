package cli

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/litesoc/litesoc-flow/plugins/litesoc"
	"github.com/litesoc/litesoc-flow/plugins/webhook"
	"github.com/litesoc/litesoc-flow/runtime"
)

const (
	litesocPluginName = "litesoc"
	webhookPluginName = "webhook"
)

// bootstrap loads the config and builds a started App with the LiteSOC and
// webhook plugins registered. Flows are not loaded.
func bootstrap() (*runtime.App, error) {
	loadEnvFile(filepath.Join(filepath.Dir(configPath), ".env"))

	path := configPath
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		path = ""
	}

	cfg, err := runtime.LoadAppConfig(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	logger := runtime.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)
	if path == "" {
		logger.Warn("Config file not found, using defaults", "path", configPath)
	}

	app := runtime.NewApp(cfg, logger)

	var litesocConfig litesoc.Config
	if err := runtime.InitializeConfig(&litesocConfig, app.PluginConfig(litesocPluginName)); err != nil {
		return nil, fmt.Errorf("failed to initialize %s config: %w", litesocPluginName, err)
	}
	if err := app.RegisterPlugin(litesocPluginName, litesoc.NewPlugin(litesocConfig, logger)); err != nil {
		return nil, fmt.Errorf("failed to register plugin '%s': %w", litesocPluginName, err)
	}

	var webhookConfig webhook.Config
	if err := runtime.InitializeConfig(&webhookConfig, app.PluginConfig(webhookPluginName)); err != nil {
		return nil, fmt.Errorf("failed to initialize %s config: %w", webhookPluginName, err)
	}
	if err := app.RegisterPlugin(webhookPluginName, webhook.NewPlugin(webhookConfig, logger)); err != nil {
		return nil, fmt.Errorf("failed to register plugin '%s': %w", webhookPluginName, err)
	}

	if err := app.Start(); err != nil {
		return nil, err
	}
	return app, nil
}

// loadEnvFile loads KEY=VALUE lines from path into the environment.
// Variables already set are left alone; a missing file is ignored.
func loadEnvFile(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}
