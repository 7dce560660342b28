package model

import (
	"fmt"
	"strings"
	"time"
)

// Command is an external command invocation as an argument vector, there is no shell involved.
type Command struct {
	// Name is the executable, looked up in PATH when it has no path separators.
	Name string
	// Args are the command arguments.
	Args []string
	// Env contains additional environment variables for the process.
	Env map[string]string
	// Timeout overrides the runner default timeout (optional).
	Timeout time.Duration
}

// Validate validates the command.
func (c Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name is required: %w", ErrNotValid)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("command timeout can't be negative: %w", ErrNotValid)
	}
	return nil
}

// String returns the command as a display string, not meant to be executed.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandResult is the outcome of a process that was launched.
type CommandResult struct {
	// ExitCode is the process exit code, -1 when the process was killed.
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	// TimedOut is true when the process was killed after exceeding its timeout.
	TimedOut bool
	// Truncated is true when any of the output streams exceeded the capture limit.
	Truncated bool
}

// OK returns true if the process exited successfully.
func (c CommandResult) OK() bool {
	return c.ExitCode == 0 && !c.TimedOut
}
