package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Programmer errors (never retried)
const (
	// ErrCodeInvalidPhase indicates an operation was called outside its valid lifecycle phase.
	ErrCodeInvalidPhase ErrorCode = "INVALID_PHASE"
	// ErrCodeInvalidArgument indicates a required value is missing or malformed.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Health listener errors
const (
	// ErrCodeBindFailed indicates the health listener could not bind its port.
	ErrCodeBindFailed ErrorCode = "BIND_FAILED"
	// ErrCodeCloseFailed indicates the health listener did not close cleanly.
	ErrCodeCloseFailed ErrorCode = "CLOSE_FAILED"
)

// Shutdown and cleanup errors
const (
	// ErrCodeProgramStopFailed indicates the program's own stop routine failed.
	ErrCodeProgramStopFailed ErrorCode = "PROGRAM_STOP_FAILED"
	// ErrCodeDisposeActionFailed indicates a single dispose action failed.
	ErrCodeDisposeActionFailed ErrorCode = "DISPOSE_ACTION_FAILED"
	// ErrCodeTimeout indicates a step or action exceeded its grace period.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodePanic indicates a step or action panicked.
	ErrCodePanic ErrorCode = "PANIC"
)

// Terminal errors
const (
	// ErrCodeUnhandledBootstrap indicates a failure reached the top-level bootstrap boundary.
	ErrCodeUnhandledBootstrap ErrorCode = "UNHANDLED_BOOTSTRAP"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// fatalCodes lists codes that terminate the bootstrap sequence when they
// reach the orchestrator's failure boundary.
var fatalCodes = map[ErrorCode]bool{
	ErrCodeBindFailed:         true,
	ErrCodeUnhandledBootstrap: true,
	ErrCodeInternal:           true,
}

// IsFatalCode returns true if the code aborts the bootstrap sequence.
func IsFatalCode(code ErrorCode) bool {
	return fatalCodes[code]
}
