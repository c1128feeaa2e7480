package logging

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSinkCapacity is the number of records retained when no capacity is given.
const DefaultSinkCapacity = 1000

// Record is one structured log entry retained by the Sink.
type Record struct {
	Time      time.Time     `json:"time"`
	Level     zerolog.Level `json:"level"`
	Component string        `json:"component"`
	Message   string        `json:"message"`
}

// Line renders the record as "[timestamp] LEVEL | component | message".
func (r Record) Line() string {
	return fmt.Sprintf("[%s] %-8s | %-20s | %s",
		r.Time.Format("2006-01-02 15:04:05.000"),
		strings.ToUpper(r.Level.String()),
		r.Component,
		r.Message)
}

// Sink is a fixed-capacity ring buffer of log records. It is the shared
// observable log surface for UIs and the gateway: appends never grow the
// buffer past capacity, the oldest record is evicted first.
//
// Sink implements io.Writer over zerolog's JSON output, so it can be attached
// as a second writer on the root logger and capture every event the process
// logs without the call sites knowing about it.
type Sink struct {
	mu      sync.Mutex
	records []Record
	start   int
	size    int
}

// NewSink creates a sink holding at most capacity records.
// Non-positive capacities fall back to DefaultSinkCapacity.
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	return &Sink{records: make([]Record, capacity)}
}

// Emit appends a record, evicting the oldest when at capacity.
func (s *Sink) Emit(level zerolog.Level, component, message string) {
	s.append(Record{
		Time:      time.Now(),
		Level:     level,
		Component: component,
		Message:   message,
	})
}

func (s *Sink) append(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.size < len(s.records) {
		s.records[(s.start+s.size)%len(s.records)] = r
		s.size++
		return
	}
	// Full: overwrite the oldest slot and advance the start.
	s.records[s.start] = r
	s.start = (s.start + 1) % len(s.records)
}

// Query returns all records at or above min severity, in insertion order
// (most recent last). The returned slice is a copy.
func (s *Sink) Query(min zerolog.Level) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, s.size)
	for i := 0; i < s.size; i++ {
		r := s.records[(s.start+i)%len(s.records)]
		if r.Level >= min && r.Level < zerolog.NoLevel {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of retained records.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Cap returns the configured capacity.
func (s *Sink) Cap() int {
	return len(s.records)
}

// Clear drops all retained records.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start = 0
	s.size = 0
}

// Format renders all records at or above min as display lines joined by newlines.
func (s *Sink) Format(min zerolog.Level) string {
	records := s.Query(min)
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.Line()
	}
	return strings.Join(lines, "\n")
}

// sinkEvent mirrors the zerolog JSON fields the sink cares about.
type sinkEvent struct {
	Level     string `json:"level"`
	Subsystem string `json:"subsystem"`
	Time      string `json:"time"`
	Message   string `json:"message"`
}

// Write parses one serialized zerolog event and appends it as a Record.
// Implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	var evt sinkEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		// Not a JSON event (e.g. console-formatted output); drop it.
		return len(p), nil
	}

	level, err := zerolog.ParseLevel(evt.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	ts, err := time.Parse(time.RFC3339, evt.Time)
	if err != nil {
		ts = time.Now()
	}

	component := evt.Subsystem
	if component == "" {
		component = "arena"
	}

	s.append(Record{
		Time:      ts,
		Level:     level,
		Component: component,
		Message:   evt.Message,
	})
	return len(p), nil
}
