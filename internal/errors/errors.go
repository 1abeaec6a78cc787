// Package errors defines stable error codes for gddoc failure modes.
// Codes distinguish conditions that abort a single file from conditions
// the driver recovers from; nothing here ever aborts the whole run.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnsupportedSceneFormat indicates a scene file header with an
	// unknown format version; fatal for that file only
	UnsupportedSceneFormat ErrorCode = "UNSUPPORTED_SCENE_FORMAT"
	// MissingRootNode indicates a scene file with no root node declaration
	MissingRootNode ErrorCode = "MISSING_ROOT_NODE"
	// SceneNotReady indicates a forward reference to a scene not yet
	// registered; the driver re-queues the file
	SceneNotReady ErrorCode = "SCENE_NOT_READY"
	// SceneBatchStalled indicates a retry pass resolved zero files
	SceneBatchStalled ErrorCode = "SCENE_BATCH_STALLED"
	// UnresolvedResource indicates a nested resource id with no declaration
	UnresolvedResource ErrorCode = "UNRESOLVED_RESOURCE"
	// UnresolvedReference indicates a crosslink target missing from the
	// symbol table
	UnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"
	// MalformedTag indicates markup that could not be parsed as a tag
	MalformedTag ErrorCode = "MALFORMED_TAG"
	// TagDepthMismatch indicates unbalanced structural markup tags
	TagDepthMismatch ErrorCode = "TAG_DEPTH_MISMATCH"
	// ScriptUnresolved indicates a node script that could not be bound
	// to a documented class
	ScriptUnresolved ErrorCode = "SCRIPT_UNRESOLVED"
	// ConfigInvalid indicates a bad configuration file
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StorageFailure indicates an index store read/write failure
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Error is a gddoc error with a stable code.
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new Error.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new Error with an underlying cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the error code carried by err, or InternalError when err
// is not a gddoc error.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return InternalError
}
