// Package ledger holds the rollback record of one optimization run.
package ledger

import "optitech/internal/domain/svc"

// Entry captures the startup type a service had immediately before it was
// changed. The type is kept as observed (AUTO_START) and converted to the
// friendly form only when compared or restored.
type Entry struct {
	ServiceName         string          `json:"service_name"`
	OriginalStartupType svc.StartupType `json:"original_startup_type"`
}

// Ledger is an ordered, append-only list of entries owned by the caller of
// one optimization cycle. The zero value is ready to use. It is not safe for
// concurrent use.
type Ledger struct {
	entries []Entry
}

func New(entries ...Entry) *Ledger {
	l := &Ledger{}
	for _, e := range entries {
		l.Append(e)
	}
	return l
}

func (l *Ledger) Append(e Entry) {
	l.entries = append(l.entries, e)
}

// Entries returns a copy in insertion order.
func (l *Ledger) Entries() []Entry {
	if l == nil {
		return nil
	}
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

func (l *Ledger) Clear() {
	if l == nil {
		return
	}
	l.entries = nil
}

// Merge appends every entry of other, keeping its order.
func (l *Ledger) Merge(other *Ledger) {
	for _, e := range other.Entries() {
		l.Append(e)
	}
}
