package synthesis

import "fmt"

// ExecutionError reports a failed external-code round-trip: a sandbox
// exception, a result that is not a field-to-array mapping, or arrays of
// unequal length. The session's previous rows are always retained when one
// is returned.
type ExecutionError struct {
	Reason string
	Err    error
}

// Error implements error.
func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("code execution failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("code execution failed: %s", e.Reason)
}

// Unwrap returns the underlying error, if any.
func (e *ExecutionError) Unwrap() error { return e.Err }
