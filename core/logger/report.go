package logger

import (
	"encoding/json"
	"io"
	"sort"
)

// Event is a decoded audit log record.
type Event struct {
	Time      string `json:"time"`
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
	Command   string `json:"command"`
	Shape     string `json:"shape,omitempty"`
	Path      string `json:"path,omitempty"`
	Status    int    `json:"status"`
	Error     string `json:"error,omitempty"`
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e *Event)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var event Event
		if err := decoder.Decode(&event); err != nil {
			return err
		}

		handler(&event)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Sessions   StrCounter `json:"sessions"`
	Events     StrCounter `json:"events"`

	Commands        *PathCounter `json:"commands"`
	UnknownCommands *PathCounter `json:"unknown_commands"`
	Timeouts        *PathCounter `json:"timeouts"`
	Failures        *PathCounter `json:"failures"`
}

// NewReport creates an empty Report.
func NewReport() *Report {
	return &Report{
		Commands:        NewPathCounter("command", "shape"),
		UnknownCommands: NewPathCounter("command", "error"),
		Timeouts:        NewPathCounter("command"),
		Failures:        NewPathCounter("command", "status"),
	}
}

// Update adds an event to the report.
func (r *Report) Update(e *Event) {
	r.LogEntries++
	r.Sessions.Increment(e.SessionID)
	r.Events.Increment(e.Event)

	switch EventType(e.Event) {
	case EventRunCommand:
		r.Commands.Increment(e.Command, e.Shape)
		if e.Status != 0 {
			r.Failures.Increment(e.Command, itoa(e.Status))
		}
	case EventBuiltin:
		r.Commands.Increment(e.Command, "builtin")
	case EventUnknownCommand:
		r.UnknownCommands.Increment(e.Command, e.Error)
	case EventTimeout:
		r.Timeouts.Increment(e.Command)
	}
}

func itoa(i int) string {
	out, _ := json.Marshal(i)
	return string(out)
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for a key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of distinct tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Get returns the count for a tuple.
func (ctr *PathCounter) Get(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
