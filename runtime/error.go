package runtime

import (
	"fmt"
)

// ErrorCause is the transport-level cause attached to a failed HTTP call.
// Code is the HTTP status returned by the server, Body the decoded JSON error payload.
type ErrorCause struct {
	Code int
	Body map[string]any
}

// RequestError is the raw error produced by the host transport when an
// authenticated request fails. Plugins classify it into a NodeAPIError.
//
// Depending on where the failure happened, the status code may be carried in
// Cause.Code, StatusCode or HTTPCode. Network failures carry none of them.
type RequestError struct {
	Cause        *ErrorCause
	StatusCode   int
	HTTPCode     int
	Message      string
	Description  string
	ResponseBody map[string]any
	Err          error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Description != "":
		return e.Description
	case e.Err != nil:
		return e.Err.Error()
	}
	return "request failed"
}

// Unwrap returns the underlying transport error for errors.Is and errors.As
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NodeAPIError is returned by a node when a call to an external API failed.
// Message is user-facing; the raw transport error is kept as Cause.
type NodeAPIError struct {
	Node     Node
	Message  string
	HTTPCode string
	Cause    error
	Metadata map[string]any
}

// NewNodeAPIError creates an API error for node, chaining cause.
func NewNodeAPIError(node Node, cause error, message, httpCode string) *NodeAPIError {
	return &NodeAPIError{
		Node:     node,
		Message:  message,
		HTTPCode: httpCode,
		Cause:    cause,
		Metadata: make(map[string]any),
	}
}

func (e *NodeAPIError) Error() string {
	return e.Message
}

func (e *NodeAPIError) Unwrap() error {
	return e.Cause
}

// WithMetadata adds metadata to the error
func (e *NodeAPIError) WithMetadata(key string, value any) *NodeAPIError {
	e.Metadata[key] = value
	return e
}

// NodeOperationError reports a failure detected by node logic before any
// request was made, e.g. a malformed parameter.
type NodeOperationError struct {
	Node    Node
	Message string
	Err     error
}

// NewNodeOperationError creates an operation error for node.
func NewNodeOperationError(node Node, format string, args ...any) *NodeOperationError {
	return &NodeOperationError{
		Node:    node,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *NodeOperationError) Error() string {
	return e.Message
}

func (e *NodeOperationError) Unwrap() error {
	return e.Err
}
