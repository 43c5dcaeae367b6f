package cli

import "fmt"

// ConfigError reports a problem with command configuration, either a
// bad config file or a flag that overrides it with an invalid value.
type ConfigError struct {
	Source  string // config file path or flag name
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Source, e.Message)
}

// NewConfigError creates a ConfigError for the given source.
func NewConfigError(source, message string) *ConfigError {
	return &ConfigError{Source: source, Message: message}
}

// CommandError wraps a failure from a subcommand so callers can report
// which command failed while still unwrapping the underlying cause.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err as a failure of the named command.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}
