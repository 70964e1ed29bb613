package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/josephlewis42/minish/core/env"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommands(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not available: %v", name, err)
		}
	}
}

// writeScript creates an executable shell script in a temporary directory.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	requireCommands(t, "sh")

	path := filepath.Join(t.TempDir(), "script")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

func TestRunLine_external(t *testing.T) {
	script := writeScript(t, `printf '%s|' "$0" "$@"; echo "$MINISH_TEST"`)
	s, out := newTestShell(t, Options{})

	require.Equal(t, 0, s.RunLine(context.Background(), "setenv MINISH_TEST visible"))
	assert.Equal(t, 0, s.RunLine(context.Background(), script+" a  b"))
	assert.Equal(t, script+"|a|b|visible\n", out.String())
}

func TestRunLine_exitStatus(t *testing.T) {
	script := writeScript(t, "exit 3")
	s, _ := newTestShell(t, Options{})

	assert.Equal(t, 3, s.RunLine(context.Background(), script))
	assert.Equal(t, 3, s.LastStatus())

	// Blank lines keep the previous status.
	assert.Equal(t, 3, s.RunLine(context.Background(), ""))
}

func TestRunLine_notExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 1, s.RunLine(context.Background(), path))
	assert.Contains(t, out.String(), "Error executing command: ")
}

func TestRunLine_redirectOut(t *testing.T) {
	requireCommands(t, "cat")
	t.Chdir(t.TempDir())
	s, out := newTestShell(t, Options{})

	require.NoError(t, os.WriteFile("out.txt", []byte("previous contents\n"), 0600))
	assert.Equal(t, 0, s.RunLine(context.Background(), "echo hi > out.txt"))
	assert.Empty(t, out.String())

	contents, err := os.ReadFile("out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(contents))

	assert.Equal(t, 0, s.RunLine(context.Background(), "cat < out.txt"))
	assert.Equal(t, "hi\n", out.String())
}

func TestRunLine_redirectCreatesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	s, _ := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "echo a > new.txt b"))

	info, err := os.Stat("new.txt")
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&^0644, "mode %v", info.Mode())

	contents, err := os.ReadFile("new.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\n", string(contents))
}

func TestRunLine_redirectExternalOut(t *testing.T) {
	script := writeScript(t, `echo "$@"`)
	t.Chdir(t.TempDir())
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), script+" x > f.txt y > z"))
	assert.Empty(t, out.String())

	contents, err := os.ReadFile("f.txt")
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(contents))
}

func TestRunLine_laterRedirectsDropped(t *testing.T) {
	requireCommands(t, "cat")
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("in", []byte("data\n"), 0600))
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "cat < in > out"))
	assert.Equal(t, "data\n", out.String())
	assert.NoFileExists(t, "out")
}

func TestRunLine_redirectMissingInput(t *testing.T) {
	t.Chdir(t.TempDir())
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 1, s.RunLine(context.Background(), "cat < missing.txt"))
	assert.True(t, strings.HasPrefix(out.String(), "Error opening file for input redirection: "), out.String())
}

func TestRunLine_pipeBuiltinToExternal(t *testing.T) {
	requireCommands(t, "wc")
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "echo a b | wc -w"))
	assert.Equal(t, "2", strings.TrimSpace(out.String()))
}

func TestRunLine_pipeExternals(t *testing.T) {
	requireCommands(t, "cat", "wc")
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("lines.txt", []byte("1\n2\n3\n"), 0600))
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "cat lines.txt | wc -l"))
	assert.Equal(t, "3", strings.TrimSpace(out.String()))
}

func TestRunLine_pipeExternalToBuiltin(t *testing.T) {
	requireCommands(t, "cat")
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "cat /dev/null | echo done"))
	assert.Equal(t, "done\n", out.String())
}

func TestRunLine_pipeMissingLeft(t *testing.T) {
	requireCommands(t, "wc")
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "nosuchcmd-minish | wc -l"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Pipeline execution error: "), lines[0])
	assert.Equal(t, "0", strings.TrimSpace(lines[1]))
}

func TestRunLine_onlyFirstPipe(t *testing.T) {
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "echo a | echo b | c"))
	assert.Equal(t, "b | c\n", out.String())
}

func TestRunLine_timeout(t *testing.T) {
	requireCommands(t, "sleep")
	s, out := newTestShell(t, Options{Timeout: 200 * time.Millisecond})

	start := time.Now()
	status := s.RunLine(context.Background(), "sleep 5")

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, 128+int(syscall.SIGKILL), status)
	assert.Equal(t, timeoutMessage, out.String())
	assert.False(t, s.watchdog.Armed())
}

func TestRunLine_timeoutPipeline(t *testing.T) {
	requireCommands(t, "sleep")
	s, out := newTestShell(t, Options{Timeout: 200 * time.Millisecond})

	start := time.Now()
	s.RunLine(context.Background(), "sleep 5 | sleep 6")

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, timeoutMessage, out.String())
}

func TestRunLine_jobInterrupted(t *testing.T) {
	script := writeScript(t, "kill -INT $$; sleep 1")
	s, out := newTestShell(t, Options{})

	status := s.RunLine(context.Background(), script)

	assert.Equal(t, 128+int(syscall.SIGINT), status)
	assert.Equal(t, fmt.Sprintf(interruptMessagef, int(syscall.SIGINT)), out.String())
}

func TestRunLine_pipelineInterrupted(t *testing.T) {
	requireCommands(t, "cat")
	script := writeScript(t, "kill -INT $$; sleep 1")
	s, out := newTestShell(t, Options{})

	s.RunLine(context.Background(), script+" | cat")

	assert.Equal(t, fmt.Sprintf(interruptMessagef, int(syscall.SIGINT)), out.String())
}

func TestRunLine_exitStatusIsNotInterrupt(t *testing.T) {
	script := writeScript(t, "exit 130")
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 130, s.RunLine(context.Background(), script))
	assert.Empty(t, out.String())
}

func TestRunLine_fastCommandNotKilled(t *testing.T) {
	requireCommands(t, "sleep")
	s, out := newTestShell(t, Options{Timeout: 2 * time.Second})

	assert.Equal(t, 0, s.RunLine(context.Background(), "sleep 0.1"))
	assert.Equal(t, 0, s.RunLine(context.Background(), "sleep 0.1"))
	assert.Empty(t, out.String())
}

func TestRunLine_contextCancelKillsJob(t *testing.T) {
	requireCommands(t, "sleep")
	s, _ := newTestShell(t, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	s.RunLine(ctx, "sleep 5")
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunLine_interruptWhileRunning(t *testing.T) {
	requireCommands(t, "sleep")
	s, out := newTestShell(t, Options{})

	s.signals.c <- syscall.SIGINT
	assert.Equal(t, 0, s.RunLine(context.Background(), "sleep 0.5"))
	assert.Equal(t, "\nSignal 2 received. Type 'exit' to close the shell.\n", out.String())
}

func TestRunLine_usesShellEnvPath(t *testing.T) {
	script := writeScript(t, "echo found")
	dir, name := filepath.Split(script)

	s, out := newTestShell(t, Options{Env: env.NewMapEnvFromEnvList([]string{"PATH=" + dir})})
	assert.Equal(t, 0, s.RunLine(context.Background(), name))
	assert.Equal(t, "found\n", out.String())
}
