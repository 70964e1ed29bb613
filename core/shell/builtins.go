package shell

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrMissingOperand is reported when a builtin is called without a required
// argument.
var ErrMissingOperand = errors.New("missing operand")

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, ec *execContext) int
}

type ShellBuiltinFunc func(s *Shell, ec *execContext) int

func (f ShellBuiltinFunc) Main(s *Shell, ec *execContext) int {
	return f(s, ec)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames returns the sorted names of all builtins.
func BuiltinNames() []string {
	var names []string
	for k := range AllBuiltins {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Cd is the cd shell builtin
func Cd(s *Shell, ec *execContext) int {
	if len(ec.args) < 2 {
		s.reportError(ec.stderr, &CommandError{Op: PrefixChdir, Err: ErrMissingOperand})
		return 1
	}

	if err := os.Chdir(ec.args[1]); err != nil {
		s.reportError(ec.stderr, &CommandError{Op: PrefixChdir, Err: err})
		return 1
	}
	return 0
}

// Pwd prints the working directory.
func Pwd(s *Shell, ec *execContext) int {
	wd, err := os.Getwd()
	if err != nil {
		s.reportError(ec.stderr, &CommandError{Op: PrefixGetwd, Err: err})
		return 1
	}

	fmt.Fprintln(ec.stdout, wd)
	return 0
}

// Echo prints its arguments separated by spaces. Arguments starting with $
// are replaced by the variable they name; unset variables print nothing.
func Echo(s *Shell, ec *execContext) int {
	var out []string
	for _, arg := range ec.args[1:] {
		if name, ok := strings.CutPrefix(arg, "$"); ok {
			arg = s.env.Getenv(name)
			if arg == "" {
				continue
			}
		}
		out = append(out, arg)
	}

	fmt.Fprintln(ec.stdout, strings.Join(out, " "))
	return 0
}

// Env prints the environment, or a single variable.
func Env(s *Shell, ec *execContext) int {
	if len(ec.args) < 2 {
		for _, entry := range s.env.Environ() {
			fmt.Fprintln(ec.stdout, entry)
		}
		return 0
	}

	name := ec.args[1]
	if value, ok := s.env.LookupEnv(name); ok {
		fmt.Fprintln(ec.stdout, value)
	} else {
		fmt.Fprintf(ec.stdout, "Environment variable '%s' not found\n", name)
	}
	return 0
}

// Setenv sets or overwrites a variable.
func Setenv(s *Shell, ec *execContext) int {
	if len(ec.args) < 3 {
		s.reportError(ec.stderr, &CommandError{Op: PrefixSetenv, Err: ErrMissingOperand})
		return 1
	}

	if err := s.env.Setenv(ec.args[1], ec.args[2]); err != nil {
		s.reportError(ec.stderr, &CommandError{Op: PrefixSetenv, Err: err})
		return 1
	}
	return 0
}

// Unsetenv removes variables from the environment.
func Unsetenv(s *Shell, ec *execContext) int {
	cmd := &SimpleCommand{
		Use:   "unsetenv NAME...",
		Short: "Remove variables from the environment.",
	}

	return cmd.Run(ec, func(args []string) int {
		if len(args) == 0 {
			s.reportError(ec.stderr, &CommandError{Op: "unsetenv", Err: ErrMissingOperand})
			return 1
		}

		ret := 0
		for _, name := range args {
			if err := s.env.Unsetenv(name); err != nil {
				s.reportError(ec.stderr, &CommandError{Op: "unsetenv", Err: err})
				ret = 1
			}
		}
		return ret
	})
}

// Exit quits the shell
func Exit(s *Shell, ec *execContext) int {
	s.Quit = true
	return 0
}

// History shows or clears the lines read by the shell.
func History(s *Shell, ec *execContext) int {
	cmd := &SimpleCommand{
		Use:   "history [-c]",
		Short: "Display or clear the history list with line numbers.",
	}
	clearHistory := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(ec, func(args []string) int {
		if *clearHistory {
			s.history = nil
			if resetter, ok := s.input.(historyResetter); ok {
				resetter.ResetHistory()
			}
			return 0
		}

		for i, line := range s.history {
			fmt.Fprintf(ec.stdout, "% 5d  %s\n", i+1, line)
		}
		return 0
	})
}

// Help lists the builtins.
func Help(s *Shell, ec *execContext) int {
	cmd := &SimpleCommand{
		Use:   "help",
		Short: "Display information about builtin commands.",
	}

	return cmd.Run(ec, func(args []string) int {
		w := ec.stdout
		fmt.Fprintln(w, "These shell commands are defined internally.")
		fmt.Fprintln(w, "Anything else is run as a program found in $PATH.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Builtins:")
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Join(BuiltinNames(), "\n"))
		return 0
	})
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["pwd"] = ShellBuiltinFunc(Pwd)
	AllBuiltins["echo"] = ShellBuiltinFunc(Echo)
	AllBuiltins["env"] = ShellBuiltinFunc(Env)
	AllBuiltins["setenv"] = ShellBuiltinFunc(Setenv)
	AllBuiltins["unsetenv"] = ShellBuiltinFunc(Unsetenv)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["history"] = ShellBuiltinFunc(History)
	AllBuiltins["help"] = ShellBuiltinFunc(Help)
}
