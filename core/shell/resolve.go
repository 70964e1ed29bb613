package shell

import "errors"

const (
	opPipe        = "|"
	opRedirectIn  = "<"
	opRedirectOut = ">"
)

var (
	// ErrMissingRedirectPath is returned when a redirection is the last token.
	ErrMissingRedirectPath = errors.New("missing file operand")
	// ErrMissingCommand is returned when an operator has no command to apply to.
	ErrMissingCommand = errors.New("missing command")
)

// Direction is the stream a redirection replaces.
type Direction int

const (
	// RedirectIn replaces standard input with a file that must exist.
	RedirectIn Direction = iota
	// RedirectOut replaces standard output with a created or truncated file.
	RedirectOut
)

func (d Direction) String() string {
	if d == RedirectIn {
		return "input"
	}
	return "output"
}

// Shape is how a line is realized as processes. It is one of Plain,
// Redirected or Piped.
type Shape interface {
	// Kind names the shape for logs and metrics.
	Kind() string
	// Argv returns the command line of the first command.
	Argv() []string
}

// Plain is a single command with the shell's standard streams.
type Plain struct {
	Args []string
}

func (Plain) Kind() string     { return "plain" }
func (p Plain) Argv() []string { return p.Args }

// Redirected is a single command with one stream replaced by a file.
type Redirected struct {
	Args      []string
	Direction Direction
	Path      string
}

func (Redirected) Kind() string     { return "redirected" }
func (r Redirected) Argv() []string { return r.Args }

// Piped is two commands with the standard output of Left connected to the
// standard input of Right.
type Piped struct {
	Left  []string
	Right []string
}

func (Piped) Kind() string     { return "piped" }
func (p Piped) Argv() []string { return p.Left }

// Resolve scans argv once from the left and derives its Shape.
//
// The first "|" splits the line into a two command pipeline, later pipes are
// ordinary arguments and redirections inside a pipeline are not resolved.
// Without a pipe the vector ends at the first "<" or ">", the token after it
// is the path and everything past the path is dropped.
func Resolve(argv []string) (Shape, error) {
	for i, tok := range argv {
		if tok != opPipe {
			continue
		}

		left, right := argv[:i:i], argv[i+1:]
		if len(left) == 0 || len(right) == 0 {
			return nil, &PipeError{Err: ErrMissingCommand}
		}
		return Piped{Left: left, Right: right}, nil
	}

	for i, tok := range argv {
		var dir Direction
		switch tok {
		case opRedirectIn:
			dir = RedirectIn
		case opRedirectOut:
			dir = RedirectOut
		default:
			continue
		}

		if i+1 >= len(argv) {
			return nil, &RedirectError{Direction: dir, Err: ErrMissingRedirectPath}
		}

		args := argv[:i:i]
		if len(args) == 0 {
			return nil, &RedirectError{Direction: dir, Path: argv[i+1], Err: ErrMissingCommand}
		}

		return Redirected{Args: args, Direction: dir, Path: argv[i+1]}, nil
	}

	return Plain{Args: argv}, nil
}
