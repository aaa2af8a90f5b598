package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateTask is returned when a registry already holds a task of
	// the same name.
	ErrDuplicateTask = errors.New("duplicate task name")
	// ErrUnknownVariant is returned when a job file names a variant that
	// no module registered.
	ErrUnknownVariant = errors.New("unknown task variant")
	// ErrNoWork is returned when a definition without Work is run.
	ErrNoWork = errors.New("task has no work")
)

// ExecutionError wraps a failure raised by a task's work.
type ExecutionError struct {
	Task string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// OutputNotReadyError is returned when reading the output of a task that has
// not run in the current run.
type OutputNotReadyError struct {
	Task string
}

func (e *OutputNotReadyError) Error() string {
	return fmt.Sprintf("output of task %q is not available; it has not run yet", e.Task)
}

// InterfaceError is returned when a variant is defined without all of its
// required attributes.
type InterfaceError struct {
	Task    string
	Variant string
	Missing []string
}

func (e *InterfaceError) Error() string {
	return fmt.Sprintf("task %q of variant %s is missing required attribute(s): %s",
		e.Task, e.Variant, strings.Join(e.Missing, ", "))
}
