// Package errors provides the lifecycle error taxonomy for svcapp.
//
// Every failure the orchestrator can report is an *AppError carrying a
// machine-readable ErrorCode. Callers match on the code rather than on
// message text:
//
//	if errors.IsCode(err, errors.ErrCodeInvalidPhase) {
//	    // configuration method called after Bootstrap
//	}
//
// IsCode sees through fmt.Errorf("%w") wrapping and errors.Join, so it also
// works on the accumulated configuration error returned by App.Err.
package errors
