package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
)

// ErrInterrupt is returned by a LineReader when the line being edited was
// interrupted with ^C.
var ErrInterrupt = readline.ErrInterrupt

// LineReader supplies the shell with input lines.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
	Close() error
}

type historyResetter interface {
	ResetHistory()
}

// TerminalReader is a line editor for interactive terminals.
type TerminalReader struct {
	*readline.Instance
}

var _ LineReader = (*TerminalReader)(nil)
var _ historyResetter = (*TerminalReader)(nil)

// NewTerminalReader creates a line editor on the process's terminal. History
// is persisted to historyFile if it's not empty.
func NewTerminalReader(historyFile string) (*TerminalReader, error) {
	cfg := &readline.Config{
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &TerminalReader{Instance: rl}, nil
}

// ResetHistory clears the in-memory history.
func (t *TerminalReader) ResetHistory() {
	t.Operation.ResetHistory()
}

// PlainReader reads newline terminated lines from a stream, printing the
// prompt before each one.
type PlainReader struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

var _ LineReader = (*PlainReader)(nil)

// NewPlainReader creates a reader over in. The prompt is written to out, a
// nil out suppresses it.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out}
}

func (p *PlainReader) SetPrompt(prompt string) {
	p.prompt = prompt
}

func (p *PlainReader) Readline() (string, error) {
	if p.out != nil {
		fmt.Fprint(p.out, p.prompt)
	}

	line, err := p.in.ReadString('\n')
	switch {
	case err == io.EOF && line != "":
		return line, nil
	case err != nil:
		return "", err
	}
	return strings.TrimSuffix(line, "\n"), nil
}

func (p *PlainReader) Close() error {
	return nil
}
