package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Input validation errors
	ErrValidation      = fmt.Errorf("validation failed")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Job errors
	ErrJobInProgress = fmt.Errorf("a job is already in progress")
	ErrStageNotReady = fmt.Errorf("stage is not ready")
	ErrCancelled     = fmt.Errorf("cancelled")

	// Execution and relay errors
	ErrExecution          = fmt.Errorf("command execution failed")
	ErrNetwork            = fmt.Errorf("relay request failed")
	ErrCommandNotAllowed  = fmt.Errorf("command not allowed")
	ErrUnsafeCommand      = fmt.Errorf("unsafe command")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")
)
