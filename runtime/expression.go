package runtime

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// Custom expression functions available in all flows
var exprFunctions = []expr.Option{
	expr.Function("base64_encode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		return base64.StdEncoding.EncodeToString([]byte(s)), nil
	}),
	expr.Function("base64_decode", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return "", err
		}
		return string(decoded), nil
	}),
}

// ExpressionEvaluator evaluates expr-lang expressions against the execution
// values (input, steps, properties).
type ExpressionEvaluator struct{}

func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

func (e *ExpressionEvaluator) Eval(expression string, env map[string]any) (any, error) {
	// expr.Env MUST come before AllowUndefinedVariables for it to work
	opts := []expr.Option{
		expr.Env(env),
		expr.AllowUndefinedVariables(),
	}
	opts = append(opts, exprFunctions...)

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}

// unwrapExpression reports whether s is an "${ ... }" expression and returns its body.
func unwrapExpression(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "${") || !strings.HasSuffix(trimmed, "}") {
		return "", false
	}
	return strings.TrimSpace(trimmed[2 : len(trimmed)-1]), true
}

// EvaluateValue resolves expressions in value recursively. Strings of the form
// "${ expr }" are evaluated; everything else is returned as a literal.
func (e *ExpressionEvaluator) EvaluateValue(value any, env map[string]any) (any, error) {
	switch v := value.(type) {
	case string:
		body, ok := unwrapExpression(v)
		if !ok {
			return v, nil
		}
		result, err := e.Eval(body, env)
		if err != nil {
			return nil, fmt.Errorf("error evaluating expression '%s': %w", v, err)
		}
		return result, nil
	case map[string]any:
		evaluated := make(map[string]any, len(v))
		for key, val := range v {
			r, err := e.EvaluateValue(val, env)
			if err != nil {
				return nil, err
			}
			evaluated[key] = r
		}
		return evaluated, nil
	case []any:
		evaluated := make([]any, len(v))
		for i, val := range v {
			r, err := e.EvaluateValue(val, env)
			if err != nil {
				return nil, err
			}
			evaluated[i] = r
		}
		return evaluated, nil
	default:
		return value, nil
	}
}

// EvaluateCondition evaluates a step condition. An empty condition is true.
func (e *ExpressionEvaluator) EvaluateCondition(condition string, env map[string]any) (bool, error) {
	if condition == "" {
		return true, nil
	}
	body, ok := unwrapExpression(condition)
	if !ok {
		body = condition
	}
	result, err := e.Eval(body, env)
	if err != nil {
		return false, fmt.Errorf("error evaluating condition %s: %w", condition, err)
	}
	resultBool, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %s evaluated to %T, expected boolean", condition, result)
	}
	return resultBool, nil
}
