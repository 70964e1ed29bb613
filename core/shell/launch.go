package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/josephlewis42/minish/core/env"
	"github.com/josephlewis42/minish/core/logger"
)

// stage is one command of a line: a builtin, an external program, or a
// program that couldn't be found.
type stage struct {
	argv    []string
	builtin ShellBuiltin
	cmd     *exec.Cmd
	err     error
}

func (s *Shell) newStage(argv []string) *stage {
	if builtin, ok := AllBuiltins[argv[0]]; ok {
		return &stage{argv: argv, builtin: builtin}
	}

	path, err := env.LookPath(s.env, argv[0])
	if err != nil {
		return &stage{argv: argv, err: err}
	}

	return &stage{
		argv: argv,
		cmd: &exec.Cmd{
			Path:   path,
			Args:   argv,
			Env:    s.env.Environ(),
			Stdin:  s.stdin,
			Stdout: s.stdout,
			Stderr: s.stderr,
		},
	}
}

func (s *Shell) runBuiltin(st *stage, stdin io.Reader, stdout io.Writer) int {
	s.log.Debug("running builtin", "argv", st.argv)
	return st.builtin.Main(s, &execContext{
		stdin:  stdin,
		stdout: stdout,
		stderr: s.stderr,
		args:   st.argv,
	})
}

// notFound reports a stage whose program couldn't be located.
func (s *Shell) notFound(st *stage, wrap func(error) error) {
	s.reportError(s.stderr, wrap(st.err))
	s.recorder.Record(logger.EventUnknownCommand, st.argv, slog.String("error", st.err.Error()))
	s.metrics.CountLaunchFailure()
}

// execute runs a resolved line and returns its status. builtin is true if
// the whole line was handled without starting a process.
func (s *Shell) execute(ctx context.Context, shape Shape) (status int, builtin bool) {
	switch sh := shape.(type) {
	case Plain:
		return s.runSingle(ctx, sh, sh.Args, s.stdin, s.stdout)

	case Redirected:
		file, err := openRedirect(sh)
		if err != nil {
			s.reportError(s.stderr, err)
			s.recorder.Record(logger.EventRedirectError, sh.Args,
				slog.String("path", sh.Path),
				slog.String("error", err.Error()))
			return 1, false
		}
		defer file.Close()

		stdin, stdout := s.stdin, s.stdout
		if sh.Direction == RedirectIn {
			stdin = file
		} else {
			stdout = file
		}
		return s.runSingle(ctx, sh, sh.Args, stdin, stdout, file)

	case Piped:
		return s.runPipeline(ctx, sh), false
	}

	panic("unknown shape")
}

func openRedirect(r Redirected) (*os.File, error) {
	var (
		file *os.File
		err  error
	)
	if r.Direction == RedirectIn {
		file, err = os.Open(r.Path)
	} else {
		file, err = os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	}
	if err != nil {
		return nil, &RedirectError{Direction: r.Direction, Path: r.Path, Err: err}
	}
	return file, nil
}

// runSingle runs one command. Any closers are released by the shell as soon
// as the process has started.
func (s *Shell) runSingle(ctx context.Context, shape Shape, argv []string, stdin io.Reader, stdout io.Writer, closers ...io.Closer) (int, bool) {
	st := s.newStage(argv)
	switch {
	case st.builtin != nil:
		return s.runBuiltin(st, stdin, stdout), true
	case st.err != nil:
		s.notFound(st, func(err error) error {
			return &CommandError{Op: PrefixExec, Err: err}
		})
		return 1, false
	}

	st.cmd.Stdin = stdin
	st.cmd.Stdout = stdout
	j, err := s.startJob(shape, closers, st.cmd)
	if err != nil {
		s.reportError(s.stderr, &CommandError{Op: PrefixSpawn, Err: err})
		s.metrics.CountLaunchFailure()
		return 1, false
	}
	return s.waitJob(ctx, j), false
}

// runPipeline connects the output of the left command to the input of the
// right one. Builtins on either side exchange data through a buffer, two
// programs through an OS pipe.
func (s *Shell) runPipeline(ctx context.Context, p Piped) int {
	pipeErr := func(err error) error { return &PipeError{Err: err} }

	left, right := s.newStage(p.Left), s.newStage(p.Right)
	for _, st := range []*stage{left, right} {
		if st.err != nil {
			s.notFound(st, pipeErr)
		}
	}

	switch {
	case left.cmd != nil && right.cmd != nil:
		pr, pw, err := os.Pipe()
		if err != nil {
			s.reportError(s.stderr, pipeErr(err))
			return 1
		}
		left.cmd.Stdout = pw
		right.cmd.Stdin = pr

		j, err := s.startJob(p, []io.Closer{pr, pw}, left.cmd, right.cmd)
		if err != nil {
			s.reportError(s.stderr, pipeErr(err))
			s.metrics.CountLaunchFailure()
			return 1
		}
		return s.waitJob(ctx, j)

	case left.cmd != nil:
		// Nothing reads the left side's output.
		left.cmd.Stdout = nil
		j, err := s.startJob(p, nil, left.cmd)
		if err != nil {
			s.reportError(s.stderr, pipeErr(err))
			s.metrics.CountLaunchFailure()
			return 1
		}

		status := 1
		if right.builtin != nil {
			status = s.runBuiltin(right, nil, s.stdout)
		}
		s.waitJob(ctx, j)
		return status

	default:
		var buf bytes.Buffer
		if left.builtin != nil {
			s.runBuiltin(left, s.stdin, &buf)
		}

		switch {
		case right.builtin != nil:
			return s.runBuiltin(right, &buf, s.stdout)
		case right.cmd != nil:
			right.cmd.Stdin = &buf
			j, err := s.startJob(p, nil, right.cmd)
			if err != nil {
				s.reportError(s.stderr, pipeErr(err))
				s.metrics.CountLaunchFailure()
				return 1
			}
			return s.waitJob(ctx, j)
		}
		return 1
	}
}

// job is the set of processes started for one line, all in one process
// group led by the first.
type job struct {
	shape   Shape
	cmds    []*exec.Cmd
	pgid    int
	started time.Time

	done chan struct{}
	errs []error
}

// startJob starts cmds in a fresh process group. The closers are released
// once every process has been started, or failed to.
func (s *Shell) startJob(shape Shape, closers []io.Closer, cmds ...*exec.Cmd) (*job, error) {
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	j := &job{shape: shape, started: time.Now(), done: make(chan struct{})}
	for _, cmd := range cmds {
		cmd.SysProcAttr = sysProcAttr(j.pgid, s.tty)
		if err := cmd.Start(); err != nil {
			if len(j.cmds) > 0 {
				j.kill()
				j.wait()
				<-j.done
				reclaimTerminal(s.tty)
			}
			return nil, err
		}
		if j.pgid == 0 {
			j.pgid = cmd.Process.Pid
		}
		j.cmds = append(j.cmds, cmd)
	}

	s.log.Debug("started job", "kind", shape.Kind(), "pgid", j.pgid, "processes", len(j.cmds))
	j.wait()
	return j, nil
}

// wait reaps every process in the background, closing done when all have
// exited.
func (j *job) wait() {
	j.errs = make([]error, len(j.cmds))
	go func() {
		defer close(j.done)
		for i, cmd := range j.cmds {
			j.errs[i] = cmd.Wait()
		}
	}()
}

func (j *job) kill() error {
	if err := killGroup(j.pgid); err == nil {
		return nil
	}

	var errs []error
	for _, cmd := range j.cmds {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// status is the exit status of the last process in the job.
func (j *job) status() int {
	last := j.cmds[len(j.cmds)-1]
	if last.ProcessState == nil {
		return 1
	}
	return exitStatus(last.ProcessState)
}

// interrupted reports whether any process in the job died from SIGINT.
func (j *job) interrupted() bool {
	for _, c := range j.cmds {
		if signaledBy(c.ProcessState, syscall.SIGINT) {
			return true
		}
	}
	return false
}

// waitJob blocks until the job exits, relaying signals and enforcing the
// timeout while it runs.
func (s *Shell) waitJob(ctx context.Context, j *job) int {
	s.watchdog.Arm(j.pgid)
	defer s.watchdog.Disarm()
	defer func() {
		if err := reclaimTerminal(s.tty); err != nil {
			s.log.Warn("couldn't reclaim terminal", "error", err)
		}
	}()

	// The terminal delivers Ctrl-C to the foreground job, not the shell.
	notified := false
	for {
		select {
		case <-j.done:
			s.metrics.ObserveJob(j.shape.Kind(), j.started)
			if !notified && j.interrupted() {
				s.interrupted(syscall.SIGINT)
			}
			status := j.status()
			s.log.Debug("job exited", "pgid", j.pgid, "status", status, "errors", j.errs)
			return status

		case sig := <-s.signals.C():
			notified = notified || sig == os.Interrupt
			s.handleSignal(sig)

		case <-s.watchdog.C():
			s.watchdog.Disarm()
			s.stdoutf(timeoutMessage)
			s.recorder.Record(logger.EventTimeout, j.shape.Argv(), slog.Int("pgid", j.pgid))
			s.metrics.CountTimeout()
			if err := j.kill(); err != nil {
				s.log.Warn("couldn't kill job", "pgid", j.pgid, "error", err)
			}

		case <-ctx.Done():
			s.log.Debug("context done, killing job", "pgid", j.pgid)
			j.kill()
			<-j.done
			return 128 + int(syscall.SIGKILL)
		}
	}
}
