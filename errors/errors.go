package errors

import (
	"fmt"
	"strings"
)

// AppError is the unified container error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError carrying the same code, so the
// package sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Sentinels for errors.Is. Never mutate them; the constructors below always
// return fresh values.
var (
	ErrDuplicateDefinition = New(ErrCodeDuplicateDefinition, "duplicate definition")
	ErrInvalidDefinition   = New(ErrCodeInvalidDefinition, "invalid definition")
	ErrUnknownDependency   = New(ErrCodeUnknownDependency, "unknown dependency")
	ErrCyclicDependency    = New(ErrCodeCyclicDependency, "cyclic dependency")
	ErrAmbiguousBinding    = New(ErrCodeAmbiguousBinding, "ambiguous binding")
	ErrTypeMismatch        = New(ErrCodeTypeMismatch, "type mismatch")
	ErrFactoryFailed       = New(ErrCodeFactoryFailed, "factory failed")
	ErrContainerClosed     = New(ErrCodeContainerClosed, "container closed")
	ErrInvalidInput        = New(ErrCodeInvalidInput, "invalid input")
)

// Detail keys shared by the constructors.
const (
	DetailDefinition = "definition"
	DetailRequiredBy = "required_by"
	DetailCycle      = "cycle"
	DetailCandidates = "candidates"
	DetailExpected   = "expected"
	DetailActual     = "actual"
)

// --- Container Error Constructors ---

// DuplicateDefinition creates an AppError for a name registered twice.
func DuplicateDefinition(name string) *AppError {
	return &AppError{
		Code:    ErrCodeDuplicateDefinition,
		Message: fmt.Sprintf("definition %q is already registered", name),
		Details: map[string]any{DetailDefinition: name},
	}
}

// InvalidDefinition creates an AppError for a definition rejected at registration.
func InvalidDefinition(name, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidDefinition,
		Message: fmt.Sprintf("definition %q is invalid: %s", name, reason),
		Details: map[string]any{DetailDefinition: name},
	}
}

// UnknownDependency creates an AppError for a name without a definition.
// requiredBy is empty when the name was requested directly.
func UnknownDependency(name, requiredBy string) *AppError {
	details := map[string]any{DetailDefinition: name}
	msg := fmt.Sprintf("no definition registered for %q", name)
	if requiredBy != "" {
		details[DetailRequiredBy] = requiredBy
		msg = fmt.Sprintf("no definition registered for %q (required by %q)", name, requiredBy)
	}
	return &AppError{
		Code: ErrCodeUnknownDependency, Message: msg, Details: details,
	}
}

// CyclicDependency creates an AppError carrying the cycle path, which starts
// and ends with the same name.
func CyclicDependency(path []string) *AppError {
	cycle := append([]string(nil), path...)
	return &AppError{
		Code:    ErrCodeCyclicDependency,
		Message: fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")),
		Details: map[string]any{DetailCycle: cycle},
	}
}

// AmbiguousBinding creates an AppError for a lookup matching several definitions.
// kind names the lookup ("role" or "type") and key is what was looked up.
func AmbiguousBinding(kind, key string, candidates []string) *AppError {
	return &AppError{
		Code: ErrCodeAmbiguousBinding,
		Message: fmt.Sprintf("%s %q matches %d definitions (%s) and none is primary",
			kind, key, len(candidates), strings.Join(candidates, ", ")),
		Details: map[string]any{
			kind:             key,
			DetailCandidates: append([]string(nil), candidates...),
		},
	}
}

// TypeMismatch creates an AppError for an instance of an unexpected Go type.
func TypeMismatch(name, expected, actual string) *AppError {
	return &AppError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("definition %q produced %s, expected %s", name, actual, expected),
		Details: map[string]any{
			DetailDefinition: name,
			DetailExpected:   expected,
			DetailActual:     actual,
		},
	}
}

// FactoryFailed wraps a factory failure with the originating definition name.
func FactoryFailed(name string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeFactoryFailed,
		Message:   fmt.Sprintf("factory for %q failed", name),
		Retryable: true,
		Details:   map[string]any{DetailDefinition: name},
		Cause:     cause,
	}
}

// ContainerClosed creates an AppError for use after teardown.
func ContainerClosed() *AppError {
	return &AppError{
		Code: ErrCodeContainerClosed, Message: "the container has been closed",
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
	}
}
