package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/josephlewis42/minish/core/env"
	"github.com/josephlewis42/minish/core/logger"
	"github.com/josephlewis42/minish/core/metrics"
)

const (
	EnvUser = "USER"

	// DefaultPrompt shows the working directory followed by "> ".
	DefaultPrompt = `\w> `
)

// Options configures a Shell. Zero values are replaced with defaults, except
// Timeout where zero disables the watchdog.
type Options struct {
	// Env holds the variables passed to programs, defaults to the process
	// environment.
	Env env.Env

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Input supplies lines, defaults to a PlainReader on Stdin.
	Input LineReader
	// TTY is the controlling terminal. If set, jobs are moved to the
	// terminal's foreground while they run.
	TTY *os.File

	Timeout time.Duration
	MaxArgs int
	Prompt  string

	Colors   *ColorPrinter
	Logger   *slog.Logger
	Recorder *logger.Recorder
	Metrics  *metrics.Metrics

	// Signals are relayed to the user while the shell runs, defaults to
	// os.Interrupt.
	Signals []os.Signal
}

// Shell reads lines and runs them.
type Shell struct {
	env    env.Env
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	input  LineReader
	tty    *os.File

	maxArgs int
	prompt  string

	colors   *ColorPrinter
	log      *slog.Logger
	recorder *logger.Recorder
	metrics  *metrics.Metrics
	watchdog *Watchdog
	signals  *signalBridge

	history []string
	lastRet int

	// Quit is set once the shell should stop reading lines.
	Quit bool
}

// New creates a shell. Close must be called to release the signal handlers.
func New(opts Options) *Shell {
	s := &Shell{
		env:      opts.Env,
		stdin:    opts.Stdin,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		input:    opts.Input,
		tty:      opts.TTY,
		maxArgs:  opts.MaxArgs,
		prompt:   opts.Prompt,
		colors:   opts.Colors,
		log:      opts.Logger,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		watchdog: NewWatchdog(opts.Timeout),
	}

	if s.env == nil {
		s.env = env.OSEnv{}
	}
	if s.stdout == nil {
		s.stdout = io.Discard
	}
	if s.stderr == nil {
		s.stderr = io.Discard
	}
	if s.input == nil {
		in := s.stdin
		if in == nil {
			in = strings.NewReader("")
		}
		s.input = NewPlainReader(in, s.stdout)
	}
	if s.maxArgs < 2 {
		s.maxArgs = DefaultMaxArgs
	}
	if s.prompt == "" {
		s.prompt = DefaultPrompt
	}
	if s.colors == nil {
		s.colors = NewColorPrinter(false)
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.recorder == nil {
		s.recorder = logger.NopRecorder()
	}

	sigs := opts.Signals
	if sigs == nil {
		sigs = []os.Signal{os.Interrupt}
	}
	s.signals = newSignalBridge(sigs...)

	return s
}

// Prompt expands the prompt template:
//
//	\w the working directory
//	\u the value of $USER
//	\h the host name
//	\$ "#" for root, otherwise "$"
func (s *Shell) Prompt() string {
	prompt := s.prompt
	prompt = strings.ReplaceAll(prompt, `\u`, s.env.Getenv(EnvUser))

	if strings.Contains(prompt, `\h`) {
		host, _ := os.Hostname()
		prompt = strings.ReplaceAll(prompt, `\h`, host)
	}

	// An unknown directory is shown as nothing.
	pwd, _ := os.Getwd()
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Geteuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

// Run reads and executes lines until the input ends, exit is called or ctx
// is done. It returns the shell's exit status.
func (s *Shell) Run(ctx context.Context) int {
	for !s.Quit {
		s.input.SetPrompt(s.Prompt())
		line, err := s.readLine(ctx)

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case errors.Is(err, ErrInterrupt):
			s.interrupted(os.Interrupt)

		case ctx.Err() != nil:
			s.log.Debug("shell stopped", "reason", context.Cause(ctx))
			return 0

		case err != nil:
			s.log.Error("couldn't read line", "error", err)
			return 1

		default:
			s.RunLine(ctx, line)
		}
	}

	return 0
}

// readLine reads a line while relaying signals that arrive in the meantime.
func (s *Shell) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		line, err := s.input.Readline()
		ch <- result{line, err}
	}()

	for {
		select {
		case r := <-ch:
			return r.line, r.err
		case sig := <-s.signals.C():
			s.handleSignal(sig)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// RunLine tokenizes, resolves and executes a single line, returning its
// status. Blank lines do nothing and keep the previous status.
func (s *Shell) RunLine(ctx context.Context, line string) int {
	tokens := Tokenize(line, s.maxArgs)
	if len(tokens) == 0 {
		return s.lastRet
	}
	s.history = append(s.history, line)

	shape, err := Resolve(tokens)
	if err != nil {
		s.reportError(s.stderr, err)
		s.recorder.Record(resolveEvent(err), tokens, slog.String("error", err.Error()))
		s.lastRet = 1
		return s.lastRet
	}

	status, builtin := s.execute(ctx, shape)
	s.lastRet = status

	kind, event := shape.Kind(), logger.EventRunCommand
	if builtin {
		kind, event = "builtin", logger.EventBuiltin
	}
	s.metrics.CountCommand(kind)
	s.recorder.Record(event, tokens,
		slog.String("shape", shape.Kind()),
		slog.Int("status", status))

	return status
}

// resolveEvent picks the audit event for an error returned by Resolve.
func resolveEvent(err error) logger.EventType {
	var pipeErr *PipeError
	if errors.As(err, &pipeErr) {
		return logger.EventPipeError
	}
	return logger.EventRedirectError
}

// LastStatus is the status of the most recently executed line.
func (s *Shell) LastStatus() int {
	return s.lastRet
}

func (s *Shell) handleSignal(sig os.Signal) {
	if sig == os.Interrupt {
		s.interrupted(sig)
		return
	}
	s.log.Debug("ignoring signal", "signal", sig)
}

func (s *Shell) interrupted(sig os.Signal) {
	num := int(syscall.SIGINT)
	if n, ok := sig.(syscall.Signal); ok {
		num = int(n)
	}
	s.stdoutf(interruptMessagef, num)
	s.recorder.Record(logger.EventInterrupt, nil, slog.Int("signal", num))
	s.metrics.CountInterrupt()
}

func (s *Shell) stdoutf(format string, a ...interface{}) {
	fmt.Fprintf(s.stdout, format, a...)
}

// Close releases the shell's input and stops relaying signals.
func (s *Shell) Close() error {
	s.signals.Stop()
	s.watchdog.Disarm()
	return s.input.Close()
}
