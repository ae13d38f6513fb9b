package errors

import (
	"errors"
	"fmt"
)

// ErrStateAbsent reports that no apply state exists on disk. It is
// informational: revert and status treat it as "nothing applied yet".
var ErrStateAbsent = errors.New("no apply state found")

// PrivilegeError reports a privileged operation attempted without elevation.
// It is fatal and raised before any mutation is performed.
type PrivilegeError struct {
	Operation string
}

// NewPrivilegeError constructs a PrivilegeError for the named operation.
func NewPrivilegeError(operation string) error {
	return &PrivilegeError{Operation: operation}
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("%s requires root privileges", e.Operation)
}

// TargetMissingError reports that the target of a change does not exist.
// Soft: the change is skipped, not failed.
type TargetMissingError struct {
	Path string
}

// NewTargetMissingError constructs a TargetMissingError.
func NewTargetMissingError(path string) error {
	return &TargetMissingError{Path: path}
}

func (e *TargetMissingError) Error() string {
	return fmt.Sprintf("target missing: %s", e.Path)
}

// WriteError reports a failed write, including the path and the value that
// was being written.
type WriteError struct {
	Path  string
	Value string
	Err   error
}

// NewWriteError constructs a WriteError.
func NewWriteError(path, value string, err error) error {
	return &WriteError{Path: path, Value: value, Err: err}
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed: %s <- %q: %v", e.Path, e.Value, e.Err)
}

// Unwrap exposes the underlying error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// ToggleReadError reports that the current state of a toggle-only device
// could not be read. The change is skipped rather than flipping blind.
type ToggleReadError struct {
	Device string
	Err    error
}

// NewToggleReadError constructs a ToggleReadError.
func NewToggleReadError(device string, err error) error {
	return &ToggleReadError{Device: device, Err: err}
}

func (e *ToggleReadError) Error() string {
	return fmt.Sprintf("cannot read toggle state for %s: %v", e.Device, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ToggleReadError) Unwrap() error {
	return e.Err
}

// ExternalToolError reports a subprocess that timed out or exited non-zero.
type ExternalToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

// NewExternalToolError constructs an ExternalToolError.
func NewExternalToolError(tool string, exitCode int, stderr string, err error) error {
	return &ExternalToolError{Tool: tool, ExitCode: exitCode, Stderr: stderr, Err: err}
}

func (e *ExternalToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed (exit %d): %v", e.Tool, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s failed (exit %d)", e.Tool, e.ExitCode)
}

// Unwrap exposes the underlying error.
func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// StateCorruptError reports an apply-state file that exists but cannot be
// parsed. Fatal for revert and status; never conflated with ErrStateAbsent.
type StateCorruptError struct {
	Path string
	Err  error
}

// NewStateCorruptError constructs a StateCorruptError.
func NewStateCorruptError(path string, err error) error {
	return &StateCorruptError{Path: path, Err: err}
}

func (e *StateCorruptError) Error() string {
	return fmt.Sprintf("apply state corrupt: %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e *StateCorruptError) Unwrap() error {
	return e.Err
}

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
	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError captures policy configuration validation issues.
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
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err must abort the invocation before any mutation.
// Only missing privilege and corrupt state qualify; everything else is a
// per-change soft failure.
func IsFatal(err error) bool {
	var priv *PrivilegeError
	var corrupt *StateCorruptError
	return errors.As(err, &priv) || errors.As(err, &corrupt)
}
