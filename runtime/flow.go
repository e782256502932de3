package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

type Flow struct {
	ID         string         `yaml:"id"`
	Steps      []Step         `yaml:"steps"`
	Properties map[string]any `yaml:"properties"`
	// Output is evaluated after the last step and becomes the flow result.
	// When empty, the result is the map of all step outputs.
	Output  map[string]any `yaml:"output"`
	Timeout time.Duration  `yaml:"timeout"`
}

type Step struct {
	ID             string         `yaml:"id"`
	Type           string         `yaml:"type"`
	Condition      string         `yaml:"condition,omitempty"`
	Args           map[string]any `yaml:"args"`
	ContinueOnFail bool           `yaml:"continueOnFail,omitempty"`
	Timeout        time.Duration  `yaml:"timeout,omitempty"`
}

var stepIDPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the flow is well formed: it has an id, step ids are usable
// as expression identifiers and unique, and every step names a task.
func (f *Flow) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("flow id is required")
	}
	seen := make(map[string]bool, len(f.Steps))
	for i, s := range f.Steps {
		if !stepIDPattern.MatchString(s.ID) {
			return fmt.Errorf("flow %s: step #%d has invalid id %q", f.ID, i, s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("flow %s: duplicate step id %q", f.ID, s.ID)
		}
		seen[s.ID] = true
		if s.Type == "" {
			return fmt.Errorf("flow %s: step %s has no type", f.ID, s.ID)
		}
	}
	return nil
}

// FlowLoader loads flow definitions from YAML files.
type FlowLoader struct{}

func NewFlowLoader() *FlowLoader {
	return &FlowLoader{}
}

func (l *FlowLoader) Extensions() []string {
	return []string{"*.yaml", "*.yml"}
}

func (l *FlowLoader) Load(filePath string) (Flow, error) {
	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		return Flow{}, fmt.Errorf("error reading YAML file: %w", err)
	}

	var flow Flow
	if err := yaml.Unmarshal(yamlFile, &flow); err != nil {
		return Flow{}, fmt.Errorf("error unmarshalling YAML: %w", err)
	}

	if err := flow.Validate(); err != nil {
		return Flow{}, fmt.Errorf("%s: %w", filePath, err)
	}

	return flow, nil
}

// LoadDir loads every flow file in dir, keyed by flow id.
func (l *FlowLoader) LoadDir(dir string) (map[string]Flow, error) {
	flows := make(map[string]Flow)
	for _, pattern := range l.Extensions() {
		files, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("error reading directory: %w", err)
		}
		for _, file := range files {
			flow, err := l.Load(file)
			if err != nil {
				return nil, err
			}
			if _, exists := flows[flow.ID]; exists {
				return nil, fmt.Errorf("duplicate flow id %s in %s", flow.ID, file)
			}
			flows[flow.ID] = flow
		}
	}
	return flows, nil
}
