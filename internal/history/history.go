// Package history keeps a JSONL log of past audit runs under the user config
// directory, one record per run.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/keygate/keygate/internal/types"
)

// Record is one logged run. Findings are summarized, never stored verbatim:
// the log lives outside the audited project and should not leak its surface.
type Record struct {
	Timestamp time.Time     `json:"timestamp"`
	RunID     string        `json:"run_id"`
	Source    string        `json:"source"`
	Summary   types.Summary `json:"summary"`
	Stats     types.Stats   `json:"stats"`
	Options   types.Options `json:"options"`
}

// Log appends and reads run records at a fixed path.
type Log struct {
	path string
}

// NewLog places the log under dir, typically the keygate config directory.
func NewLog(dir string) *Log {
	return &Log{path: filepath.Join(dir, "runs.jsonl")}
}

// Append writes one record. Owner-only permissions: records name audited
// origins.
func (l *Log) Append(rec Record) error {
	if rec.RunID == "" {
		rec.RunID = fmt.Sprintf("run_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("write run record: %w", err)
	}
	return nil
}

// Load returns all records, newest first. Malformed lines are skipped.
func (l *Log) Load() ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// FromReport summarizes a finished run into a record.
func FromReport(r types.Report) Record {
	return Record{
		Timestamp: r.GeneratedAt,
		Source:    r.Source,
		Summary:   r.Summary,
		Stats:     r.Stats,
		Options:   r.Options,
	}
}
