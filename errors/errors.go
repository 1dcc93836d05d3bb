package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// AppError is the unified lifecycle error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
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

// Is reports whether target is an *AppError with the same code, so that
// errors.Is(err, errors.New(ErrCodeInvalidPhase, "")) matches any
// invalid-phase failure.
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

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// InvalidPhase creates an error for an operation called outside its valid phase.
func InvalidPhase(operation, phase string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidPhase,
		Message: fmt.Sprintf("%s is not allowed in phase %s", operation, phase),
		Details: map[string]any{"operation": operation, "phase": phase},
	}
}

// InvalidArgument creates an error for a missing or malformed argument.
func InvalidArgument(argument, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument %s: %s", argument, reason),
		Details: map[string]any{"argument": argument},
	}
}

// Bind creates an error for a listener that failed to bind.
func Bind(addr string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeBindFailed,
		Message: fmt.Sprintf("failed to bind %s", addr),
		Details: map[string]any{"addr": addr},
		Cause:   cause,
	}
}

// Close creates an error for a listener that failed to close.
func Close(addr string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCloseFailed,
		Message: fmt.Sprintf("failed to close %s", addr),
		Details: map[string]any{"addr": addr},
		Cause:   cause,
	}
}

// ProgramStop creates an error for a failed program stop routine.
func ProgramStop(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeProgramStopFailed,
		Message: "program stop failed",
		Cause:   cause,
	}
}

// DisposeAction creates an error for a failed dispose action.
func DisposeAction(name string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeDisposeActionFailed,
		Message: fmt.Sprintf("dispose action %s failed", name),
		Details: map[string]any{"action": name},
		Cause:   cause,
	}
}

// Timeout creates an error for an operation that exceeded its grace period.
func Timeout(operation string, after time.Duration) *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: fmt.Sprintf("%s did not finish within %s", operation, after),
		Details: map[string]any{"operation": operation, "timeout": after.String()},
	}
}

// Panic creates an error for an operation that panicked.
func Panic(operation string, value any) *AppError {
	return &AppError{
		Code:    ErrCodePanic,
		Message: fmt.Sprintf("%s panicked: %v", operation, value),
		Details: map[string]any{"operation": operation},
	}
}

// UnhandledBootstrap wraps a failure that reached the bootstrap boundary.
// An error that is already an UnhandledBootstrap error is returned as is.
func UnhandledBootstrap(cause error) *AppError {
	if appErr, ok := AsAppError(cause); ok && appErr.Code == ErrCodeUnhandledBootstrap {
		return appErr
	}
	return &AppError{
		Code:    ErrCodeUnhandledBootstrap,
		Message: "unhandled bootstrap error",
		Cause:   cause,
	}
}

// Internal creates a new AppError for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "an unexpected error occurred",
		Cause:   cause,
	}
}

// --- Helpers ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether any error in err's tree carries the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, &AppError{Code: code})
}

// Join is errors.Join re-exported so callers importing this package under
// the name "errors" keep access to it.
func Join(errs ...error) error {
	return stderrors.Join(errs...)
}
