package runtime

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Task is a unit of work a flow step can invoke.
type Task interface {
	Execute(*Execution, map[string]any) (map[string]any, error)
}

type Container struct {
	Tasks   map[string]Task
	plugins map[string]any
	order   []string
}

func NewContainer() *Container {
	return &Container{
		Tasks:   make(map[string]Task),
		plugins: make(map[string]any),
	}
}

func (c *Container) GetTask(name string) Task {
	task, ok := c.Tasks[name]
	if !ok {
		return nil
	}
	return task
}

func (c *Container) SetTask(name string, task Task) {
	c.Tasks[name] = task
}

// TaskNames returns all registered task names, sorted.
func (c *Container) TaskNames() []string {
	names := make([]string, 0, len(c.Tasks))
	for name := range c.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterPlugin registers a plugin instance and auto-discovers its tasks.
//
// Exported methods with one of these signatures become tasks named
// pluginName.methodName (first letter lowercased):
//
//	func (p *P) Task(exec *Execution, args map[string]any) (map[string]any, error)
//	func (p *P) Task(exec *Execution, input In) (Out, error)   // In, Out structs
func (c *Container) RegisterPlugin(pluginName string, plugin any) error {
	if plugin == nil {
		return fmt.Errorf("plugin cannot be nil")
	}
	if _, exists := c.plugins[pluginName]; exists {
		return fmt.Errorf("plugin %s already registered", pluginName)
	}

	c.plugins[pluginName] = plugin
	c.order = append(c.order, pluginName)

	pluginType := reflect.TypeOf(plugin)
	pluginValue := reflect.ValueOf(plugin)

	for i := 0; i < pluginType.NumMethod(); i++ {
		method := pluginType.Method(i)
		if !method.IsExported() {
			continue
		}

		taskName := fmt.Sprintf("%s.%s", pluginName, toLowerFirst(method.Name))

		switch {
		case isMapTaskSignature(method.Type):
			c.Tasks[taskName] = &pluginTaskWrapper{plugin: pluginValue, method: method}
		case isTypedTaskSignature(method.Type):
			c.Tasks[taskName] = &typedTaskWrapper{plugin: pluginValue, method: method}
		}
	}

	return nil
}

// GetPlugin returns a plugin instance by name
func (c *Container) GetPlugin(name string) any {
	return c.plugins[name]
}

// CredentialTypes collects credential types declared by registered plugins.
func (c *Container) CredentialTypes() []CredentialType {
	var types []CredentialType
	for _, name := range c.order {
		if provider, ok := c.plugins[name].(CredentialProvider); ok {
			types = append(types, provider.CredentialTypes()...)
		}
	}
	return types
}

// Initialize calls Initialize on all plugins implementing Initializer, in
// registration order. The first failure aborts startup.
func (c *Container) Initialize() error {
	for _, name := range c.order {
		if initializer, ok := c.plugins[name].(Initializer); ok {
			if err := initializer.Initialize(); err != nil {
				return fmt.Errorf("plugin %s initialization failed: %w", name, err)
			}
		}
	}
	return nil
}

// Shutdown calls Shutdown on all plugins implementing Shutdowner, in reverse
// registration order.
func (c *Container) Shutdown() error {
	var errs []error
	for i := len(c.order) - 1; i >= 0; i-- {
		name := c.order[i]
		if shutdowner, ok := c.plugins[name].(Shutdowner); ok {
			if err := shutdowner.Shutdown(); err != nil {
				errs = append(errs, fmt.Errorf("plugin %s shutdown failed: %w", name, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

var (
	executionPtrType = reflect.TypeOf((*Execution)(nil))
	mapType          = reflect.TypeOf(map[string]any(nil))
	errorType        = reflect.TypeOf((*error)(nil)).Elem()
)

// isMapTaskSignature: func(exec *Execution, args map[string]any) (map[string]any, error)
func isMapTaskSignature(methodType reflect.Type) bool {
	if methodType.NumIn() != 3 || methodType.NumOut() != 2 {
		return false
	}
	return methodType.In(1) == executionPtrType &&
		methodType.In(2) == mapType &&
		methodType.Out(0) == mapType &&
		methodType.Out(1) == errorType
}

// isTypedTaskSignature: func(exec *Execution, input In) (Out, error) with struct In/Out
func isTypedTaskSignature(methodType reflect.Type) bool {
	if methodType.NumIn() != 3 || methodType.NumOut() != 2 {
		return false
	}
	return methodType.In(1) == executionPtrType &&
		methodType.In(2).Kind() == reflect.Struct &&
		methodType.Out(0).Kind() == reflect.Struct &&
		methodType.Out(1) == errorType
}

func toLowerFirst(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// pluginTaskWrapper wraps a map-based plugin method
type pluginTaskWrapper struct {
	plugin reflect.Value
	method reflect.Method
}

func (w *pluginTaskWrapper) Execute(exec *Execution, args map[string]any) (map[string]any, error) {
	results := w.method.Func.Call([]reflect.Value{
		w.plugin,
		reflect.ValueOf(exec),
		reflect.ValueOf(args),
	})

	resultMap, _ := results[0].Interface().(map[string]any)

	var err error
	if !results[1].IsNil() {
		err = results[1].Interface().(error)
	}

	return resultMap, err
}

// typedTaskWrapper decodes and validates args into the method's input struct
// and converts the output struct back to a map.
type typedTaskWrapper struct {
	plugin reflect.Value
	method reflect.Method
}

func (w *typedTaskWrapper) Execute(exec *Execution, args map[string]any) (map[string]any, error) {
	inputType := w.method.Type.In(2)
	input := reflect.New(inputType)

	if err := DecodeInput(args, input.Interface()); err != nil {
		return nil, NewNodeOperationError(exec.CurrentNode(), "invalid input for %s: %v", w.method.Name, err)
	}

	results := w.method.Func.Call([]reflect.Value{
		w.plugin,
		reflect.ValueOf(exec),
		input.Elem(),
	})

	if !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}

	output, err := structToMap(results[0].Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to convert output of %s: %w", w.method.Name, err)
	}
	return output, nil
}
