package util

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common error types for the Stackup CLI
var (
	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRuntimeVersion indicates the host runtime is older than required
	ErrRuntimeVersion = errors.New("unsupported runtime version")

	// ErrToolMissing indicates a required executable is not on PATH
	ErrToolMissing = errors.New("required tool missing")

	// ErrCommandFailed indicates an external command exited unsuccessfully
	ErrCommandFailed = errors.New("command failed")

	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCancelled indicates an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")

	// ErrResourceNotFound indicates a Kubernetes resource was not found
	ErrResourceNotFound = errors.New("resource not found")

	// ErrInvalidResource indicates an invalid resource specification
	ErrInvalidResource = errors.New("invalid resource")
)

// StageError wraps an error with the name of the orchestration stage it came from
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *StageError) Unwrap() error {
	return e.Err
}

// WrapStageError wraps an error with stage context
func WrapStageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{
		Stage: stage,
		Err:   err,
	}
}

// StageOf returns the stage name carried by err, or "" if there is none
func StageOf(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage
	}
	return ""
}

// CommandError describes an external command that exited unsuccessfully
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Err      error
}

// Error implements the error interface
func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Command + " " + strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s (exit code %d): %v", cmdline, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", cmdline, e.Err)
}

// Unwrap returns the underlying errors, including ErrCommandFailed
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// MissingToolsError lists the required executables that could not be resolved
type MissingToolsError struct {
	Tools []string
}

// Error implements the error interface
func (e *MissingToolsError) Error() string {
	return fmt.Sprintf("required tools not found in PATH: %s", strings.Join(e.Tools, ", "))
}

// Unwrap returns ErrToolMissing
func (e *MissingToolsError) Unwrap() error {
	return ErrToolMissing
}

// RuntimeVersionError reports a runtime older than the supported minimum
type RuntimeVersionError struct {
	Runtime string
	Minimum string
}

// Error implements the error interface
func (e *RuntimeVersionError) Error() string {
	return fmt.Sprintf("runtime version %s is below the required minimum %s", e.Runtime, e.Minimum)
}

// Unwrap returns ErrRuntimeVersion
func (e *RuntimeVersionError) Unwrap() error {
	return ErrRuntimeVersion
}

// TimeoutError reports a readiness condition that did not hold in time
type TimeoutError struct {
	What  string
	After time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.After, e.What)
}

// Unwrap returns ErrTimeout
func (e *TimeoutError) Unwrap() error {
	return ErrTimeout
}

// MultiError aggregates multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 { // Limit to first 10 errors in the message
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else if i == 10 {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Value != nil {
		return fmt.Sprintf("validation failed for field %q (value: %v): %s", v.Field, v.Value, v.Message)
	}
	return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
}

// Unwrap returns ErrInvalidConfig
func (v *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsCancelled checks if an error is a cancellation error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// FriendlyError converts technical errors to user-friendly hints
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrRuntimeVersion):
		return "The runtime is too old. Upgrade it or lower preflight.minRuntimeVersion."
	case errors.Is(err, ErrToolMissing):
		return "Install the missing tools and make sure they are on your PATH."
	case IsTimeout(err):
		return "A component did not become ready in time. Check the session log and raise the matching timeout if the host is slow."
	case IsCancelled(err):
		return "Operation was cancelled. The cluster is left in its current partial state."
	case errors.Is(err, ErrCommandFailed):
		return "An external command failed. Its full output is in the session log."
	case IsNotFound(err):
		return "An expected resource was not found. Check the manifests and the controller namespace."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid configuration. Please check your config file and environment overrides."
	case errors.Is(err, ErrInvalidResource):
		return "Invalid resource specification. Please check your manifest files."
	default:
		return err.Error()
	}
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
