// Package ledgerfile exports a rollback ledger to disk so a restore can run
// in a later process.
package ledgerfile

import (
	"encoding/json"
	"os"
	"time"

	"github.com/juju/errors"

	"optitech/internal/domain/ledger"
	"optitech/internal/domain/safety"
	"optitech/internal/infra/fsutil"
)

const SchemaVersion = "1.0"

type snapshot struct {
	SchemaVersion string         `json:"schema_version"`
	CreatedAt     time.Time      `json:"created_at"`
	Entries       []ledger.Entry `json:"entries"`
}

var now = func() time.Time { return time.Now().UTC() }

// Save writes l to path atomically.
func Save(path string, l *ledger.Ledger) error {
	entries := l.Entries()
	if entries == nil {
		entries = []ledger.Entry{}
	}
	b, err := json.MarshalIndent(snapshot{
		SchemaVersion: SchemaVersion,
		CreatedAt:     now(),
		Entries:       entries,
	}, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	return fsutil.WriteFile(path, append(b, '\n'))
}

// Load reads a snapshot. An entry with an invalid service name makes the
// whole snapshot invalid; restoring a partial file would hide tampering.
func Load(path string) (*ledger.Ledger, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NotFoundf("ledger snapshot %s", path)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "read ledger snapshot")
	}

	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, errors.NotValidf("ledger snapshot %s: %v", path, err)
	}
	if s.SchemaVersion != "" && s.SchemaVersion != SchemaVersion {
		return nil, errors.NotSupportedf("ledger snapshot schema %q", s.SchemaVersion)
	}
	for i, e := range s.Entries {
		if err := safety.ValidateServiceName(e.ServiceName); err != nil {
			return nil, errors.NotValidf("ledger entry %d: %v", i, err)
		}
	}
	return ledger.New(s.Entries...), nil
}

// Truncate replaces the snapshot with an empty ledger.
func Truncate(path string) error {
	return Save(path, ledger.New())
}
