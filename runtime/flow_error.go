package runtime

import (
	"context"
	"errors"
	"fmt"
)

// FlowErrorType classifies error severity and retry behavior.
type FlowErrorType string

const (
	// ErrorTypeTransient signals the operation can be retried later.
	ErrorTypeTransient FlowErrorType = "transient"
	// ErrorTypePermanent signals the operation should not be retried.
	ErrorTypePermanent FlowErrorType = "permanent"
	// ErrorTypeTimeout signals the operation was cancelled by a deadline.
	ErrorTypeTimeout FlowErrorType = "timeout"
)

// FlowErrorCode identifies known runtime error codes.
type FlowErrorCode string

const (
	ErrorCodeRuntimeError     FlowErrorCode = "RUNTIME_ERROR"
	ErrorCodeAPIError         FlowErrorCode = "API_ERROR"
	ErrorCodeOperationError   FlowErrorCode = "OPERATION_ERROR"
	ErrorCodeTaskNotFound     FlowErrorCode = "TASK_NOT_FOUND"
	ErrorCodeContextCancelled FlowErrorCode = "CONTEXT_CANCELLED"
	ErrorCodeDeadlineExceeded FlowErrorCode = "DEADLINE_EXCEEDED"
)

// FlowError is the canonical error type propagated out of a flow execution.
// It is JSON-serializable so the HTTP trigger can return it as is.
type FlowError struct {
	Type     FlowErrorType `json:"type"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Step     string        `json:"step"`
	HTTPCode string        `json:"http_code,omitempty"`
	Err      error         `json:"-"`
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("[%s/%s] %s (step: %s)", e.Type, e.Code, e.Message, e.Step)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// ToMap converts the error to a map suitable for expression contexts.
func (e *FlowError) ToMap() map[string]any {
	m := map[string]any{
		"type":    string(e.Type),
		"code":    e.Code,
		"message": e.Message,
		"step":    e.Step,
	}
	if e.HTTPCode != "" {
		m["http_code"] = e.HTTPCode
	}
	return m
}

// NewFlowError classifies err raised while running step.
func NewFlowError(step string, err error) *FlowError {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr
	}

	fe := &FlowError{
		Type:    ErrorTypePermanent,
		Code:    string(ErrorCodeRuntimeError),
		Message: err.Error(),
		Step:    step,
		Err:     err,
	}

	var apiErr *NodeAPIError
	var opErr *NodeOperationError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fe.Type = ErrorTypeTimeout
		fe.Code = string(ErrorCodeDeadlineExceeded)
	case errors.Is(err, context.Canceled):
		fe.Code = string(ErrorCodeContextCancelled)
	case errors.As(err, &apiErr):
		fe.Code = string(ErrorCodeAPIError)
		fe.HTTPCode = apiErr.HTTPCode
		if isTransientHTTPCode(apiErr.HTTPCode) {
			fe.Type = ErrorTypeTransient
		}
	case errors.As(err, &opErr):
		fe.Code = string(ErrorCodeOperationError)
	}

	return fe
}

func isTransientHTTPCode(code string) bool {
	switch code {
	case "429", "500", "502", "503", "504":
		return true
	}
	return false
}
