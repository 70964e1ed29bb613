package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/minish/core/env"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestShell creates a shell writing stdout and stderr to the returned
// buffer. Signals aren't relayed unless opts asks for them.
func newTestShell(t *testing.T, opts Options) (*Shell, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	if opts.Env == nil {
		opts.Env = env.NewMapEnvFromEnvList([]string{
			"PATH=" + os.Getenv("PATH"),
			"HOME=/home/tester",
		})
	}
	if opts.Signals == nil {
		opts.Signals = []os.Signal{}
	}
	opts.Stdout = &out
	opts.Stderr = &out

	s := New(opts)
	t.Cleanup(func() {
		s.Close()
	})
	return s, &out
}

func TestAllBuiltins(t *testing.T) {
	for _, name := range BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			if AllBuiltins[name] == nil {
				t.Fatal("nil builtin", name)
			}
		})
	}
}

func TestBuiltinsGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]struct {
		env   []string
		lines []string
	}{
		"echo": {
			lines: []string{"echo hello   world", "echo", `echo "quoted words"`},
		},
		"echo_variables": {
			env:   []string{"FOO=bar", "EMPTY="},
			lines: []string{"echo $FOO $EMPTY $MISSING baz", "echo $ $FOO$FOO"},
		},
		"env_list": {
			env:   []string{"A=1", "B=2"},
			lines: []string{"setenv C 3", "setenv A 4", "env"},
		},
		"env_lookup": {
			env:   []string{"A=1"},
			lines: []string{"env A", "env NOPE", "unsetenv A", "env A"},
		},
		"errors": {
			env: []string{"PATH=/nonexistent-minish-path"},
			lines: []string{
				"cd",
				"setenv ONLY",
				"nosuchcmd-minish",
				"echo hi >",
				"cat <",
				"| wc",
				"ls |",
			},
		},
		"help": {
			lines: []string{"help"},
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s, out := newTestShell(t, Options{Env: env.NewMapEnvFromEnvList(tc.env)})
			for _, line := range tc.lines {
				s.RunLine(context.Background(), line)
			}

			g.Assert(t, tn, out.Bytes())
		})
	}
}

func TestCd(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	target := t.TempDir()

	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "cd "+target))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assertSameFile(t, target, wd)

	out.Reset()
	assert.Equal(t, 0, s.RunLine(context.Background(), "pwd"))
	assert.Equal(t, wd+"\n", out.String())
}

func TestCd_missingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	s, out := newTestShell(t, Options{})

	assert.Equal(t, 1, s.RunLine(context.Background(), "cd /nonexistent-minish-dir"))
	assert.Contains(t, out.String(), "Error changing directory: ")

	wd, err := os.Getwd()
	require.NoError(t, err)
	assertSameFile(t, dir, wd)
}

func TestSetenv(t *testing.T) {
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "setenv FOO bar"))
	assert.Equal(t, 0, s.RunLine(context.Background(), "env FOO"))
	assert.Equal(t, "bar\n", out.String())

	out.Reset()
	assert.Equal(t, 1, s.RunLine(context.Background(), "setenv BAD=NAME x"))
	assert.Contains(t, out.String(), "Error setting environment variable: ")
}

func TestExit(t *testing.T) {
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "exit"))
	assert.True(t, s.Quit)
	assert.Empty(t, out.String())
}

func TestHistory(t *testing.T) {
	s, out := newTestShell(t, Options{})

	s.RunLine(context.Background(), "echo a")
	s.RunLine(context.Background(), "   ")
	out.Reset()

	s.RunLine(context.Background(), "history")
	assert.Equal(t, "    1  echo a\n    2  history\n", out.String())

	out.Reset()
	s.RunLine(context.Background(), "history -c")
	s.RunLine(context.Background(), "history")
	assert.Equal(t, "    1  history\n", out.String())
}

func TestUnsetenv_help(t *testing.T) {
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 0, s.RunLine(context.Background(), "unsetenv --help"))
	assert.Contains(t, out.String(), "usage: unsetenv NAME...")
	assert.Contains(t, out.String(), "--help")
}

func TestHistory_badFlag(t *testing.T) {
	s, out := newTestShell(t, Options{})

	assert.Equal(t, 1, s.RunLine(context.Background(), "history --nope"))
	assert.Contains(t, out.String(), "usage: history [-c]")
}

func assertSameFile(t *testing.T, expected, actual string) {
	t.Helper()

	expectedInfo, err := os.Stat(expected)
	require.NoError(t, err)
	actualInfo, err := os.Stat(actual)
	require.NoError(t, err)
	assert.True(t, os.SameFile(expectedInfo, actualInfo), "%q is not %q", actual, expected)
}
