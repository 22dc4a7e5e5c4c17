// Package report builds and renders the terminal snapshot of an audit run.
package report

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/keygate/keygate/internal/findings"
	"github.com/keygate/keygate/internal/types"
)

// Meta is the run metadata stamped into every report.
type Meta struct {
	Tool     string
	Version  string
	Source   string
	Matrix   []types.MatrixCell
	Stats    types.Stats
	Built    time.Time // zero means now
}

// Build assembles the report from the aggregator's terminal state. Pure:
// no network, no mutation of inputs; call exactly once per run.
func Build(meta Meta, opts types.Options, agg *findings.Aggregator) types.Report {
	at := meta.Built
	if at.IsZero() {
		at = time.Now().UTC()
	}
	fs := agg.All()
	if fs == nil {
		fs = []types.Finding{}
	}
	return types.Report{
		Tool:        meta.Tool,
		Version:     meta.Version,
		GeneratedAt: at,
		Source:      meta.Source,
		Options:     opts,
		Summary:     agg.Summary(),
		Findings:    fs,
		Matrix:      meta.Matrix,
		Stats:       meta.Stats,
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadJSON decodes a saved report, for `keygate show` and baseline updates.
func ReadJSON(r io.Reader) (types.Report, error) {
	var rep types.Report
	err := json.NewDecoder(r).Decode(&rep)
	return rep, err
}

// SaveFile writes the report to a file with owner-only permissions: findings
// name reachable surfaces of a live system.
func SaveFile(path string, r types.Report) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(f, r)
}

// ShouldFail implements the strict gate: non-zero exit iff strict mode is on
// and the High count is positive. Medium/Low never fail a run by themselves.
func ShouldFail(s types.Summary, strict bool) bool {
	return strict && s.High > 0
}
