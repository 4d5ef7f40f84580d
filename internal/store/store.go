// Package store persists the dispatch audit trail in a SQLite database:
// method registrations and per-call trace events. The CLI queries it to
// answer "what methods does this generic have" and "what did recent
// dispatches do" without the process that produced them.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/genfun/internal/trace"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	call_id TEXT NOT NULL,
	kind    TEXT NOT NULL,
	generic TEXT NOT NULL,
	class   TEXT NOT NULL DEFAULT '',
	detail  TEXT NOT NULL DEFAULT '',
	at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS events_call ON events(call_id);

CREATE TABLE IF NOT EXISTS registrations (
	generic TEXT NOT NULL,
	class   TEXT NOT NULL,
	source  TEXT NOT NULL DEFAULT '',
	at      INTEGER NOT NULL,
	PRIMARY KEY (generic, class)
);
`

// Store wraps the audit database. It implements trace.Sink, so it can be
// installed directly on a dispatch table.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the audit database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Emit records a trace event. Sink emission cannot fail the dispatch that
// produced it, so write errors are logged and dropped.
func (s *Store) Emit(ev trace.Event) {
	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO events (call_id, kind, generic, class, detail, at) VALUES (?, ?, ?, ?, ?, ?)",
		ev.CallID, ev.Kind, ev.Generic, ev.Class, ev.Detail, at.UnixNano(),
	)
	if err != nil {
		s.logger.Error("audit write failed", "err", err, "call", ev.CallID)
	}
}

// RecordRegistration notes that a method was registered. A later
// registration for the same (generic, class) pair replaces the record.
func (s *Store) RecordRegistration(generic, class, source string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO registrations (generic, class, source, at) VALUES (?, ?, ?, ?)",
		generic, class, source, time.Now().UnixNano(),
	)
	return err
}

// Registration is one row of the registrations table.
type Registration struct {
	Generic string
	Class   string
	Source  string
	At      time.Time
}

// Registrations lists recorded methods for a generic, sorted by class.
func (s *Store) Registrations(generic string) ([]Registration, error) {
	rows, err := s.db.Query(
		"SELECT generic, class, source, at FROM registrations WHERE generic = ? ORDER BY class",
		generic,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		var r Registration
		var at int64
		if err := rows.Scan(&r.Generic, &r.Class, &r.Source, &at); err != nil {
			return nil, err
		}
		r.At = time.Unix(0, at)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CallRecord summarizes one dispatch call: the generic it resolved and the
// kind of its final event (match, mode, default or fail).
type CallRecord struct {
	CallID  string
	Generic string
	Outcome string
	At      time.Time
}

// RecentCalls returns the latest n dispatch calls, newest first.
func (s *Store) RecentCalls(n int) ([]CallRecord, error) {
	rows, err := s.db.Query(`
		SELECT e.call_id, e.generic, e.kind, e.at
		FROM events e
		JOIN (
			SELECT call_id, MAX(id) AS last_id
			FROM events
			GROUP BY call_id
		) last ON e.id = last.last_id
		ORDER BY e.id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		var c CallRecord
		var at int64
		if err := rows.Scan(&c.CallID, &c.Generic, &c.Outcome, &at); err != nil {
			return nil, err
		}
		c.At = time.Unix(0, at)
		out = append(out, c)
	}
	return out, rows.Err()
}

// CallEvents returns the full event trail of one call, in emission order.
func (s *Store) CallEvents(callID string) ([]trace.Event, error) {
	rows, err := s.db.Query(
		"SELECT call_id, kind, generic, class, detail, at FROM events WHERE call_id = ? ORDER BY id",
		callID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trace.Event
	for rows.Next() {
		var ev trace.Event
		var at int64
		if err := rows.Scan(&ev.CallID, &ev.Kind, &ev.Generic, &ev.Class, &ev.Detail, &at); err != nil {
			return nil, err
		}
		ev.Time = time.Unix(0, at)
		out = append(out, ev)
	}
	return out, rows.Err()
}
