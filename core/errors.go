package core

import (
	"errors"
	"fmt"
	"time"
)

// Error kinds returned by Kind. These are the classification strings recorded
// in ExecutionRecord.ErrorType and in pipeline results.
const (
	KindInitialization = "initialization"
	KindValidation     = "validation"
	KindExecution      = "execution"
	KindTimeout        = "timeout"
	KindTerminated     = "terminated"
	KindUnknown        = "unknown"
)

// InitializationError reports that an interpreter backend could not be set
// up (unreachable endpoint, missing configuration). The backend instance is
// unusable until Initialize succeeds.
type InitializationError struct {
	Backend string
	Err     error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialization of %s failed: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("initialization of %s failed", e.Backend)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// ValidationError reports a task or input that fails its precondition.
// Validation failures never reach the backend.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ExecutionError reports a backend failure during a call. The core records
// it and never retries; retry policy belongs to the caller.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return e.Err.Error() }

func (e *ExecutionError) Unwrap() error { return e.Err }

// TimeoutError reports that a backend call exceeded its allotted time.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution exceeded timeout of %s", e.Timeout)
}

// AgentTerminatedError reports an operation attempted on a terminated agent.
// Termination is irreversible, so every subsequent call fails the same way.
type AgentTerminatedError struct {
	AgentID string
}

func (e *AgentTerminatedError) Error() string {
	return fmt.Sprintf("agent %s is terminated", e.AgentID)
}

// Kind classifies err into one of the Kind* constants.
func Kind(err error) string {
	var (
		initErr       *InitializationError
		validationErr *ValidationError
		execErr       *ExecutionError
		timeoutErr    *TimeoutError
		terminated    *AgentTerminatedError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &initErr):
		return KindInitialization
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &terminated):
		return KindTerminated
	case errors.As(err, &execErr):
		return KindExecution
	case err != nil:
		return KindUnknown
	default:
		return ""
	}
}
