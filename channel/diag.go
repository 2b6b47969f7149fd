package channel

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const maxDiagEntries = 200

// DiagEntry is one recorded diagnostic. Dropped sends, session replacement
// and navigation failures all land here so a debug surface can replay them.
type DiagEntry struct {
	Time    time.Time
	Kind    string // "drop", "send", "session", "nav"
	Message string
}

// Diagnostics is a capped in-memory event log paired with a structured
// logger. The ring feeds the debug overlay; the logger feeds whatever sink
// the host configured, usually a file since a TUI cannot log to stdout.
type Diagnostics struct {
	log     zerolog.Logger
	entries []DiagEntry
}

// NewDiagnostics builds a recorder writing structured output to w.
// A nil writer discards the structured stream but still keeps the ring.
func NewDiagnostics(w io.Writer) *Diagnostics {
	if w == nil {
		w = io.Discard
	}
	return &Diagnostics{
		log: zerolog.New(w).With().Timestamp().Str("component", "miniapp").Logger(),
	}
}

// Record appends a ring entry and emits a structured log line.
func (d *Diagnostics) Record(kind, message string, fields map[string]any) {
	if d == nil {
		return
	}
	d.entries = append(d.entries, DiagEntry{Time: time.Now(), Kind: kind, Message: message})
	if len(d.entries) > maxDiagEntries {
		d.entries = d.entries[len(d.entries)-maxDiagEntries:]
	}
	ev := d.log.Info().Str("kind", kind)
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(message)
}

// Entries returns a snapshot of the ring, oldest first.
func (d *Diagnostics) Entries() []DiagEntry {
	if d == nil {
		return nil
	}
	out := make([]DiagEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Logger exposes the underlying structured logger for callers that need to
// attach their own context.
func (d *Diagnostics) Logger() zerolog.Logger {
	if d == nil {
		return zerolog.Nop()
	}
	return d.log
}
