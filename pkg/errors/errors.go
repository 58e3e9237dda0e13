package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CommandError represents a provisioning command that exited non-zero or
// could not be started. Captured output is preserved verbatim so that
// callers can classify the failure.
type CommandError struct {
	Command  string
	ExitCode int
	Output   string
	Err      error
}

// NewCommandError constructs a CommandError.
func NewCommandError(command string, exitCode int, output string, err error) error {
	return &CommandError{Command: command, ExitCode: exitCode, Output: output, Err: err}
}

func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	return msg
}

// Unwrap exposes the underlying error.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ReconcileError marks a terminal reconciliation failure requiring manual
// intervention. It carries the raw output of the last deployment attempt
// and the fixed remediation checklist shown to the operator.
type ReconcileError struct {
	Stack       string
	RawOutput   string
	Remediation []string
	Err         error
}

// NewReconcileError constructs a ReconcileError.
func NewReconcileError(stack, rawOutput string, remediation []string, err error) error {
	return &ReconcileError{Stack: stack, RawOutput: rawOutput, Remediation: remediation, Err: err}
}

func (e *ReconcileError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("reconciliation of stack %s failed: %v", e.Stack, e.Err)
	}
	return fmt.Sprintf("reconciliation of stack %s failed", e.Stack)
}

// Unwrap exposes the underlying error.
func (e *ReconcileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
