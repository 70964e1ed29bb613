package shell

import (
	"fmt"
	"io"

	getopt "github.com/pborman/getopt/v2"
)

// execContext holds the streams and arguments of a single builtin invocation.
type execContext struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// args contains the CLI arguments for the command, args[0] is the name.
	args []string
}

// SimpleCommand parses getopt style flags for a builtin.
type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string

	flags    *getopt.Set
	showHelp *bool
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// Run the command, if flag parsing was successful call the callback with the
// remaining arguments.
func (s *SimpleCommand) Run(ec *execContext, callback func(args []string) int) int {
	opts := s.Flags()
	if s.showHelp == nil {
		s.showHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(ec.args, nil); err != nil {
		fmt.Fprintf(ec.stderr, "%s: %s\n\n", ec.args[0], err)
		s.PrintHelp(ec.stderr)
		return 1
	}

	if *s.showHelp {
		s.PrintHelp(ec.stdout)
		return 0
	}

	return callback(opts.Args())
}
