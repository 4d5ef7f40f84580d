// Package trace records dispatch activity. Every top-level dispatch call
// gets a unique call ID; the resolver emits one event per probe so a sink
// can reconstruct exactly which classes were tried and where the method
// came from.
package trace

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds, one per resolver step.
const (
	KindDispatch = "dispatch" // top-level dispatch started
	KindProbe    = "probe"    // class probed, no method
	KindMatch    = "match"    // method found for a class
	KindProceed  = "proceed"  // method delegated to the next match
	KindMode     = "mode"     // primitive-style mode fallback matched
	KindDefault  = "default"  // default fallback matched
	KindFail     = "fail"     // resolution failed
)

type Event struct {
	CallID  string
	Kind    string
	Generic string
	Class   string // probed or matched class; mode name for KindMode
	Detail  string // failure text, remote target, etc.
	Time    time.Time
}

// Sink receives dispatch events. Emit must be safe for concurrent use;
// dispatch is frequent and may run from many goroutines.
type Sink interface {
	Emit(Event)
}

// NewCallID returns a fresh dispatch call ID.
func NewCallID() string {
	return uuid.New().String()
}

// MemorySink collects events in order, for tests and the CLI.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *MemorySink) Emit(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

// Events returns a copy of everything recorded so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// SlogSink logs every event at debug level through a slog.Logger.
type SlogSink struct {
	Logger *slog.Logger
}

func (s *SlogSink) Emit(ev Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("dispatch",
		"call", ev.CallID,
		"kind", ev.Kind,
		"generic", ev.Generic,
		"class", ev.Class,
		"detail", ev.Detail,
	)
}

// Multi fans an event out to several sinks.
type Multi []Sink

func (m Multi) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}
