package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/SladkyCitron/slogcolor"
	"golang.org/x/term"
)

// newLogger creates the diagnostic logger. Output to a terminal is
// colorized.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slogcolor.NewHandler(w, &slogcolor.Options{
			Level: level,
		}))
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
