package config

import "fmt"

// ValidationError describes a config value that cannot be used
type ValidationError struct {
	Field   string // YAML path of the offending value, e.g. "discovery.domain"
	Message string // Human-readable error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s (caused by: %v)", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ValidationError) Unwrap() error {
	return e.Err
}
