package execsvc

import (
	"errors"
	"fmt"
)

// ExecutionError represents a transport or protocol failure talking to the
// execution service. The core never retries these; they surface to the caller.
type ExecutionError struct {
	Op     string // "create_thread", "add_message", ...
	Status int    // HTTP status, 0 for transport failures
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("execution service: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("execution service: %s: %v", e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ActiveRunError reports that the service rejected a mutation because a run is
// still occupying the thread. It is recoverable: the conflict resolver cancels
// the active runs and retries once.
type ActiveRunError struct {
	ThreadID string
	Err      error
}

func (e *ActiveRunError) Error() string {
	return fmt.Sprintf("thread %s has an active run: %v", e.ThreadID, e.Err)
}

func (e *ActiveRunError) Unwrap() error {
	return e.Err
}

// IsActiveRun reports whether err is, or wraps, an ActiveRunError.
func IsActiveRun(err error) bool {
	var are *ActiveRunError
	return errors.As(err, &are)
}
