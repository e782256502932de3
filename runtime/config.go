package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// hostname_port accepts "host:port" and ":port"; an empty host means all interfaces
	v.RegisterValidation("hostname_port", func(fl validator.FieldLevel) bool {
		_, port, err := net.SplitHostPort(fl.Field().String())
		if err != nil || port == "" {
			return false
		}
		_, err = net.LookupPort("tcp", port)
		return err == nil
	})

	v.RegisterValidation("url_format", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && u.Scheme != "" && u.Host != ""
	})

	return v
}

// InitializeConfig prepares a plugin config struct: `default` tags first, then
// rawValues (yaml tags, ${VAR} references resolved), then `validate` tags.
func InitializeConfig(config any, rawValues map[string]any) (err error) {
	defer func() {
		if err != nil {
			slog.Error("Plugin config initialization failed",
				"config_type", reflect.TypeOf(config).String(),
				"error", err)
		}
	}()

	if err := ApplyDefaults(config); err != nil {
		return err
	}

	if len(rawValues) > 0 {
		resolved, err := resolveEnvValues(rawValues)
		if err != nil {
			return err
		}
		if err := mapToStructFromYAML(resolved, config); err != nil {
			return fmt.Errorf("failed to apply config values: %w", err)
		}
	}

	return validateStruct(config)
}

// resolveEnvValues returns a copy of values with ${VAR} references resolved.
func resolveEnvValues(values map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(values))
	for k, v := range values {
		rv, err := resolveEnvVar(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		resolved[k] = rv
	}
	return resolved, nil
}

func ApplyDefaults(config any) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply default values: %w", err)
	}
	return nil
}

// validateStruct checks the `validate` tags of s, which may be a struct or a
// pointer to one. All failing fields are reported, by namespace.
func validateStruct(s any) error {
	if s == nil {
		return errors.New("config cannot be nil")
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s (rule: %s)",
			fe.Field(), fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// RegisterCustomValidator adds a `validate` tag usable by plugin configs and
// typed task inputs.
func RegisterCustomValidator(tag string, fn validator.Func) error {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("failed to register custom validator '%s': %w", tag, err)
	}
	return nil
}
