package logger

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
)

// EventType names a recorded event.
type EventType string

const (
	EventRunCommand     EventType = "run_command"
	EventBuiltin        EventType = "builtin"
	EventUnknownCommand EventType = "unknown_command"
	EventRedirectError  EventType = "redirect_error"
	EventPipeError      EventType = "pipe_error"
	EventTimeout        EventType = "timeout"
	EventInterrupt      EventType = "interrupt"
)

// Recorder writes events for a single shell session.
type Recorder struct {
	log       *slog.Logger
	sessionID string
}

// NewJSONLinesRecorder creates a Recorder that writes one JSON object per
// event to w. A nil writer discards all events.
func NewJSONLinesRecorder(w io.Writer) *Recorder {
	if w == nil {
		w = io.Discard
	}
	sessionID := uuid.NewString()
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})

	return &Recorder{
		log:       slog.New(handler).With("session_id", sessionID),
		sessionID: sessionID,
	}
}

// NopRecorder returns a Recorder that discards events.
func NopRecorder() *Recorder {
	return NewJSONLinesRecorder(nil)
}

// SessionID returns the identifier attached to every event.
func (r *Recorder) SessionID() string {
	return r.sessionID
}

// Record writes an event. argv is shell quoted so it can be pasted back into
// a shell.
func (r *Recorder) Record(event EventType, argv []string, attrs ...slog.Attr) {
	if r == nil {
		return
	}
	attrs = append([]slog.Attr{
		slog.String("event", string(event)),
		slog.String("command", shellquote.Join(argv...)),
	}, attrs...)

	r.log.LogAttrs(context.Background(), slog.LevelInfo, string(event), attrs...)
}
