package report

import (
	"encoding/json"
	"fmt"
	"os"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/keygate/keygate/internal/types"
)

// DefaultBaselineFile is the repo-local accepted-exposures file.
const DefaultBaselineFile = "keygate.baseline.json"

// Baseline holds fingerprints of accepted exposures. Findings matching a
// fingerprint still appear in reports but no longer trip the strict gate.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

// Fingerprint identifies a finding across runs: tier, probe kind, category
// and target, independent of message wording and status code.
func Fingerprint(f types.Finding) string {
	h := xxhash.New()
	_, _ = h.WriteString(string(f.Tier))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(string(f.Kind))
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(f.Category)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(f.Target)
	return fmt.Sprintf("%016x", h.Sum64())
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	_ = json.Unmarshal(raw, &b)
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, fs []types.Finding) error {
	b := Baseline{Items: map[string]bool{}}
	for _, f := range fs {
		b.Items[Fingerprint(f)] = true
	}
	buf, _ := json.MarshalIndent(b, "", "  ")
	return os.WriteFile(path, buf, 0644)
}

// FilterNew returns the findings not covered by the baseline.
func FilterNew(fs []types.Finding, base Baseline) []types.Finding {
	var out []types.Finding
	for _, f := range fs {
		if !base.Items[Fingerprint(f)] {
			out = append(out, f)
		}
	}
	return out
}

// Summarize recounts severities over a findings subset, e.g. post-baseline.
func Summarize(fs []types.Finding) types.Summary {
	var s types.Summary
	for _, f := range fs {
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
