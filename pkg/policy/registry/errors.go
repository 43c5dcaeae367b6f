package registry

import "fmt"

// LoadError reports a failure to read the policy storage root itself.
// Malformed or missing files inside an individual pack never produce a
// LoadError; they degrade that pack to zero rules instead.
type LoadError struct {
	// Path is the location that failed to load.
	Path string

	// Message describes the failure.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load policy packs from %q: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load policy packs from %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}
