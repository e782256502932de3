package runtime

import (
	"context"
	"fmt"
	"log/slog"
)

// Executor runs the steps of a flow in order. Each step invokes one task from
// the container; a failing step aborts the flow unless it sets continueOnFail,
// in which case its error is recorded as the step result.
type Executor struct {
	l         *slog.Logger
	evaluator *ExpressionEvaluator
}

func NewExecutor(l *slog.Logger, evaluator *ExpressionEvaluator) *Executor {
	if l == nil {
		l = slog.Default()
	}
	return &Executor{
		l:         l,
		evaluator: evaluator,
	}
}

// Run executes all steps of execution.Flow and returns the flow output.
func (e *Executor) Run(execution *Execution) (map[string]any, error) {
	flow := execution.Flow

	if flow.Timeout > 0 {
		ctx, cancel := context.WithTimeout(execution.ctx, flow.Timeout)
		defer cancel()
		execution.ctx = ctx
	}

	for _, s := range flow.Steps {
		if err := execution.Err(); err != nil {
			return nil, NewFlowError(s.ID, err)
		}

		ok, err := e.evaluator.EvaluateCondition(s.Condition, execution.Values())
		if err != nil {
			e.l.ErrorContext(execution, fmt.Sprintf("Error evaluating condition for step %s", s.ID),
				"condition", s.Condition,
				"error", err)
			return nil, NewFlowError(s.ID, err)
		}
		if !ok {
			e.l.InfoContext(execution, fmt.Sprintf("Skipping step: %s", s.ID))
			continue
		}

		output, err := e.executeStep(execution, s)
		if err != nil {
			flowErr := NewFlowError(s.ID, err)
			if !s.ContinueOnFail {
				e.l.ErrorContext(execution, fmt.Sprintf("Step failed: %s", s.ID),
					"task_type", s.Type,
					"code", flowErr.Code,
					"error", err.Error())
				return nil, flowErr
			}
			e.l.WarnContext(execution, fmt.Sprintf("Step failed, continuing: %s", s.ID),
				"task_type", s.Type,
				"error", err.Error())
			output = map[string]any{"error": flowErr.ToMap()}
		}

		execution.SetStepResult(s.ID, output)
		e.l.InfoContext(execution, fmt.Sprintf("Executed step: %s", s.ID), "task_type", s.Type)
	}

	return e.flowOutput(execution)
}

func (e *Executor) executeStep(execution *Execution, s Step) (map[string]any, error) {
	task := execution.Container.GetTask(s.Type)
	if task == nil {
		return nil, &FlowError{
			Type:    ErrorTypePermanent,
			Code:    string(ErrorCodeTaskNotFound),
			Message: fmt.Sprintf("task type: %s not found", s.Type),
			Step:    s.ID,
		}
	}

	evaluated, err := e.evaluator.EvaluateValue(s.Args, execution.Values())
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate args for task %s: %w", s.Type, err)
	}
	args, _ := evaluated.(map[string]any)
	if args == nil {
		args = map[string]any{}
	}

	stepExec := execution.WithNode(Node{Name: s.ID, Type: s.Type, TypeVersion: 1})
	if s.Timeout > 0 {
		ctx, cancel := context.WithTimeout(execution.ctx, s.Timeout)
		defer cancel()
		stepExec.ctx = ctx
	}

	return task.Execute(stepExec, args)
}

func (e *Executor) flowOutput(execution *Execution) (map[string]any, error) {
	if len(execution.Flow.Output) == 0 {
		return execution.steps(), nil
	}

	evaluated, err := e.evaluator.EvaluateValue(execution.Flow.Output, execution.Values())
	if err != nil {
		return nil, NewFlowError("output", err)
	}
	out, _ := evaluated.(map[string]any)
	return out, nil
}
