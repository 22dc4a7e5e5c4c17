package types

import "time"

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// IdentityTier names one of the three credential profiles a probe can run
// under. The set is closed; new tiers require a classifier policy change.
type IdentityTier string

const (
	TierNoAuth    IdentityTier = "no_auth"
	TierSharedKey IdentityTier = "shared_key"
	TierUserToken IdentityTier = "user_token"
)

// TargetKind is the class of remote surface a Target names.
type TargetKind string

const (
	KindTable  TargetKind = "table"
	KindRPC    TargetKind = "rpc"
	KindBucket TargetKind = "bucket"
)

// Target is one probeable surface, unique by (Kind, Name) within a run.
type Target struct {
	Name string     `json:"name"`
	Kind TargetKind `json:"kind"`
}

// ProbeKind is the closed set of request shapes the executor knows how to
// send. Each kind is legal only for certain target kinds.
type ProbeKind string

const (
	ProbeRead        ProbeKind = "read"
	ProbeReadSample  ProbeKind = "read_sample" // opt-in: pulls a literal row sample
	ProbeListObjects ProbeKind = "list_objects"
	ProbeMutatePatch ProbeKind = "mutate_patch"
	ProbeMutateDel   ProbeKind = "mutate_delete"
	ProbeMutateIns   ProbeKind = "mutate_create"
	ProbeRPCInvoke   ProbeKind = "rpc_invoke"
)

// OutcomeClass distinguishes a real HTTP answer from the two "no answer"
// values. TransportError and NotApplicable are first-class results, not
// swallowed failures: the classifier treats both as inconclusive.
type OutcomeClass string

const (
	OutcomeStatus         OutcomeClass = "status"
	OutcomeTransportError OutcomeClass = "transport_error"
	OutcomeNotApplicable  OutcomeClass = "not_applicable"
)

// Outcome is the normalized result of exactly one probe. Ephemeral: produced
// by the executor, consumed immediately by the classifier.
type Outcome struct {
	Target Target       `json:"target"`
	Tier   IdentityTier `json:"tier"`
	Kind   ProbeKind    `json:"kind"`
	Class  OutcomeClass `json:"class"`
	Status int          `json:"status,omitempty"` // set only when Class == OutcomeStatus

	// Columns is best-effort metadata pulled from a JSON read body; empty
	// when the body was absent or unparsable. Never affects classification.
	Columns []string `json:"columns,omitempty"`
}

// Success reports whether the probe got a real 2xx answer.
func (o Outcome) Success() bool {
	return o.Class == OutcomeStatus && o.Status >= 200 && o.Status < 300
}

// Finding is one audit observation. Append-only; insertion order is kept for
// reporting but carries no meaning.
type Finding struct {
	Severity Severity     `json:"severity"`
	Category string       `json:"category"`
	Target   string       `json:"target"`
	Tier     IdentityTier `json:"tier,omitempty"`
	Kind     ProbeKind    `json:"probe,omitempty"`
	Status   int          `json:"status,omitempty"`
	Message  string       `json:"message"`
}

// Summary holds finding counts per severity.
type Summary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the summed finding count.
func (s Summary) Total() int { return s.High + s.Medium + s.Low }

// Options is the enabled-feature snapshot embedded in every report. It never
// carries credential material.
type Options struct {
	Discovery      bool   `json:"discovery"`
	NoAuth         bool   `json:"no_auth"`
	Matrix         bool   `json:"matrix"`
	RPC            bool   `json:"rpc"`
	Mutations      bool   `json:"mutations"`
	Inserts        bool   `json:"inserts"`
	Storage        bool   `json:"storage"`
	Sample         bool   `json:"sample"`
	Strict         bool   `json:"strict"`
	SensitiveTerms string `json:"sensitive_terms,omitempty"`
	MutationFilter string `json:"mutation_filter,omitempty"`
	MinDelay       string `json:"min_delay,omitempty"`
}

// MatrixCell is one identity x target access observation, collected only in
// matrix mode. User-tier successes live here and nowhere else.
type MatrixCell struct {
	Target Target       `json:"target"`
	Tier   IdentityTier `json:"tier"`
	Kind   ProbeKind    `json:"probe"`
	Class  OutcomeClass `json:"class"`
	Status int          `json:"status,omitempty"`
}

// Stats carries run-level counters for the report footer and history log.
type Stats struct {
	ProbesPlanned int    `json:"probes_planned"`
	ProbesIssued  int    `json:"probes_issued"`
	Targets       int    `json:"targets"`
	Duration      string `json:"duration"`
	Degraded      bool   `json:"degraded"` // discovery/storage listing fell back
}

// Report is the terminal snapshot of a run. Built exactly once, after all
// probing completes; never mutated afterwards.
type Report struct {
	Tool        string       `json:"tool"`
	Version     string       `json:"version"`
	GeneratedAt time.Time    `json:"generated_at"`
	Source      string       `json:"source"`
	Options     Options      `json:"options"`
	Summary     Summary      `json:"summary"`
	Findings    []Finding    `json:"findings"`
	Matrix      []MatrixCell `json:"matrix,omitempty"`
	Stats       Stats        `json:"stats"`
}
