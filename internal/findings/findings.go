// Package findings accumulates audit findings during a run.
package findings

import (
	"sync"

	"github.com/keygate/keygate/internal/types"
)

// Aggregator is an append-only findings store, safe for concurrent Record
// calls. No deduplication: the same (category, target) pair can legitimately
// recur across probe kinds and identity tiers.
type Aggregator struct {
	mu       sync.Mutex
	findings []types.Finding
}

func New() *Aggregator { return &Aggregator{} }

// Record appends one finding.
func (a *Aggregator) Record(f types.Finding) {
	a.mu.Lock()
	a.findings = append(a.findings, f)
	a.mu.Unlock()
}

// RecordAll appends findings in order.
func (a *Aggregator) RecordAll(fs []types.Finding) {
	a.mu.Lock()
	a.findings = append(a.findings, fs...)
	a.mu.Unlock()
}

// All returns a copy of the findings in insertion order.
func (a *Aggregator) All() []types.Finding {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Finding, len(a.findings))
	copy(out, a.findings)
	return out
}

// Summary counts findings per severity.
func (a *Aggregator) Summary() types.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	var s types.Summary
	for _, f := range a.findings {
		switch f.Severity {
		case types.SevHigh:
			s.High++
		case types.SevMed:
			s.Medium++
		default:
			s.Low++
		}
	}
	return s
}
