package logger

import (
	"time"

	apperrors "github.com/kbukum/svcapp/errors"
)

// Standard field key constants for structured logging.
const (
	FieldComponent  = "component"
	FieldService    = "service"
	FieldInstanceID = "instance_id"
	FieldPhase      = "phase"
	FieldStep       = "step"
	FieldAction     = "action"
	FieldPort       = "port"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldErrorCode  = "error_code"
	FieldDuration   = "duration_ms"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("step", "stop-program", "attempt", 1))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed. AppError codes
// are copied into their own field so operators can filter on them.
func ErrorFields(op string, err error) map[string]interface{} {
	fields := map[string]interface{}{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		fields[FieldErrorCode] = string(appErr.Code)
	}
	return fields
}

// DurationFields creates fields for a timed operation.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return map[string]interface{}{
		FieldOperation: op,
		FieldDuration:  d.Milliseconds(),
	}
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
