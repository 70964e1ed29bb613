package shell

import (
	"errors"
	"fmt"
	"io"
)

// Prefixes of messages printed for failed commands.
const (
	PrefixChdir     = "Error changing directory"
	PrefixGetwd     = "Error retrieving current directory"
	PrefixSetenv    = "Error setting environment variable"
	PrefixExec      = "Error executing command"
	PrefixSpawn     = "Failed to create process"
	PrefixPipeline  = "Pipeline execution error"
	prefixRedirectf = "Error opening file for %s redirection"
)

// CommandError is a failure reported to the user as "<prefix>: <cause>".
type CommandError struct {
	Op  string
	Err error
}

func (e *CommandError) Error() string {
	return e.Prefix() + ": " + e.Err.Error()
}

// Prefix is the human readable part of the message.
func (e *CommandError) Prefix() string {
	return e.Op
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RedirectError is a failure to set up a redirection.
type RedirectError struct {
	Direction Direction
	Path      string
	Err       error
}

func (e *RedirectError) Error() string {
	return e.Prefix() + ": " + e.Err.Error()
}

// Prefix is the human readable part of the message.
func (e *RedirectError) Prefix() string {
	return fmt.Sprintf(prefixRedirectf, e.Direction)
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}

// PipeError is a malformed pipeline or a pipeline that could not be started.
type PipeError struct {
	Err error
}

func (e *PipeError) Error() string {
	return e.Prefix() + ": " + e.Err.Error()
}

// Prefix is the human readable part of the message.
func (e *PipeError) Prefix() string {
	return PrefixPipeline
}

func (e *PipeError) Unwrap() error {
	return e.Err
}

type prefixedError interface {
	error
	Prefix() string
	Unwrap() error
}

// reportError writes err to w, highlighting the prefix if colors are on.
func (s *Shell) reportError(w io.Writer, err error) {
	var pe prefixedError
	if errors.As(err, &pe) {
		fmt.Fprintf(w, "%s: %v\n", s.colors.Error(pe.Prefix()), pe.Unwrap())
		return
	}
	fmt.Fprintln(w, err)
}
