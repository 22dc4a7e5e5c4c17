// Package classify maps probe outcomes onto the severity taxonomy. Every
// function here is pure: the same inputs always produce the same finding, so
// audits stay reproducible across runs.
package classify

import (
	"fmt"
	"regexp"

	"github.com/keygate/keygate/internal/types"
)

// DefaultSensitiveTerms is the built-in pattern for metadata name checks
// (table columns, rpc names, bucket names). Overridable via config.
const DefaultSensitiveTerms = `(?i)(secret|token|password|passwd|api_?key|ssn|social_security|credit_?card|card_number|iban|salary|dob|birth|private)`

// categories, stable across runs and releases: baselines and CI gates key on
// these strings.
var categoryByKind = map[types.ProbeKind]string{
	types.ProbeRead:        "table_read",
	types.ProbeReadSample:  "table_sample",
	types.ProbeListObjects: "bucket_list",
	types.ProbeMutatePatch: "table_patch",
	types.ProbeMutateDel:   "table_delete",
	types.ProbeMutateIns:   "table_insert",
	types.ProbeRPCInvoke:   "rpc_invoke",
}

var verbByKind = map[types.ProbeKind]string{
	types.ProbeRead:        "read",
	types.ProbeReadSample:  "sample read",
	types.ProbeListObjects: "object listing",
	types.ProbeMutatePatch: "update",
	types.ProbeMutateDel:   "delete",
	types.ProbeMutateIns:   "insert",
	types.ProbeRPCInvoke:   "invoke",
}

// Outcome converts one probe outcome into zero or one finding.
//
// Policy (exhaustive): a 2xx answer is High under no_auth, Medium under
// shared_key, and no finding under user_token (expected access, recorded in
// the matrix only). Non-2xx, transport errors, and not_applicable never
// produce a finding. Any 2xx counts as success, not literal 200.
func Outcome(o types.Outcome) (types.Finding, bool) {
	if !o.Success() || o.Tier == types.TierUserToken {
		return types.Finding{}, false
	}
	sev := types.SevMed
	who := "shared key"
	if o.Tier == types.TierNoAuth {
		sev = types.SevHigh
		who = "unauthenticated client"
	}
	return types.Finding{
		Severity: sev,
		Category: categoryByKind[o.Kind],
		Target:   o.Target.Name,
		Tier:     o.Tier,
		Kind:     o.Kind,
		Status:   o.Status,
		Message:  fmt.Sprintf("%s %s on %s %q returned %d", who, verbByKind[o.Kind], o.Target.Kind, o.Target.Name, o.Status),
	}, true
}

// BucketPublic flags a bucket whose listing entry carries public=true. The
// exposure is a fact observed in the listing, not a probe outcome, so it
// bypasses Outcome entirely.
func BucketPublic(name string) types.Finding {
	return types.Finding{
		Severity: types.SevMed,
		Category: "bucket_public",
		Target:   name,
		Message:  fmt.Sprintf("storage bucket %q is marked public", name),
	}
}

// SensitiveNames flags metadata names matching the sensitive-term pattern.
// label names what the list holds ("column", "rpc", "bucket") and target is
// the surface the names belong to.
func SensitiveNames(pattern *regexp.Regexp, label, target string, names []string) []types.Finding {
	var out []types.Finding
	for _, n := range names {
		if !pattern.MatchString(n) {
			continue
		}
		out = append(out, types.Finding{
			Severity: types.SevMed,
			Category: "sensitive_name",
			Target:   target,
			Message:  fmt.Sprintf("%s %q on %q matches the sensitive-term pattern", label, n, target),
		})
	}
	return out
}
