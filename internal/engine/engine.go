// Package engine orchestrates one audit run: catalog assembly, the probe
// plan, classification and report assembly. Probes run as a single sequence
// so progress output stays deterministic and the rate limiter's intent of
// not bursting the remote host holds trivially.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/keygate/keygate/internal/catalog"
	"github.com/keygate/keygate/internal/classify"
	"github.com/keygate/keygate/internal/findings"
	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/probe"
	"github.com/keygate/keygate/internal/ratelimit"
	"github.com/keygate/keygate/internal/report"
	"github.com/keygate/keygate/internal/types"
)

// ErrNoTargets aborts a run that has nothing to probe: discovery failed (or
// was disabled) and no allowlist was supplied.
var ErrNoTargets = errors.New("no targets: discovery unavailable and no allowlist supplied")

// Config is the immutable run configuration. Constructed once by the caller
// and passed explicitly; nothing in the engine mutates it.
type Config struct {
	BaseURL   string
	SharedKey string
	UserToken string

	// Allowlist is raw file content (one table per line); file I/O stays
	// with the caller.
	Allowlist string

	Discovery bool
	NoAuth    bool
	Matrix    bool
	RPC       bool
	Mutations bool
	Inserts   bool
	Storage   bool
	Sample    bool
	Strict    bool

	SampleRows     int
	MutationFilter string
	SensitiveTerms string // regexp; empty uses the built-in pattern
	MinDelay       time.Duration
	Timeout        time.Duration

	IncludeGlobs string // comma-separated doublestar globs on target names
	ExcludeGlobs string

	Tool    string
	Version string

	// Progress is invoked after every issued probe.
	Progress func(done, total int)
}

// Result is the run outcome handed back to the caller.
type Result struct {
	Report   types.Report
	Degraded bool
}

type plannedProbe struct {
	target types.Target
	tier   types.IdentityTier
	kind   types.ProbeKind
}

// Run executes one audit. Configuration errors and fatal discovery failures
// return before any probe is issued; everything recoverable is reflected in
// the report instead.
func Run(ctx context.Context, cfg Config) (Result, error) {
	start := time.Now()

	ids, err := identity.NewSet(cfg.SharedKey, cfg.UserToken)
	if err != nil {
		return Result{}, err
	}

	terms := cfg.SensitiveTerms
	if terms == "" {
		terms = classify.DefaultSensitiveTerms
	}
	sensitive, err := regexp.Compile(terms)
	if err != nil {
		return Result{}, fmt.Errorf("sensitive-term pattern: %w", err)
	}

	client := probe.NewClient(probe.Config{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		MutationFilter: cfg.MutationFilter,
		SampleRows:     cfg.SampleRows,
	})

	agg := findings.New()
	shared := ids.Resolve(types.TierSharedKey)

	// Catalog: allowlist first, then discovery under the shared key.
	allowTables := catalog.ParseAllowlist(cfg.Allowlist)
	var discTables, discRPCs []types.Target
	degraded := false
	if cfg.Discovery {
		status, body, ferr := client.FetchDiscovery(shared)
		if ferr != nil || status < 200 || status >= 300 {
			degraded = true
		} else if t, r, perr := catalog.ParseDiscovery(body); perr != nil {
			degraded = true
		} else {
			discTables, discRPCs = t, r
		}
		if degraded && len(allowTables) == 0 {
			return Result{}, fmt.Errorf("discovery failed: %w", ErrNoTargets)
		}
	} else if len(allowTables) == 0 {
		return Result{}, ErrNoTargets
	}

	tables := filterTargets(catalog.Merge(allowTables, discTables), cfg.IncludeGlobs, cfg.ExcludeGlobs)
	rpcs := filterTargets(catalog.Merge(discRPCs), cfg.IncludeGlobs, cfg.ExcludeGlobs)

	// Storage buckets: one listing under shared key; public flags become
	// findings directly, every bucket becomes a list_objects target.
	var buckets []types.Target
	if cfg.Storage {
		if status, body, ferr := client.FetchBuckets(shared); ferr == nil && status >= 200 && status < 300 {
			if bs, perr := catalog.ParseBuckets(body); perr == nil {
				var names []string
				for _, b := range bs {
					if b.Public {
						agg.Record(classify.BucketPublic(b.Name))
					}
					names = append(names, b.Name)
					buckets = append(buckets, types.Target{Name: b.Name, Kind: types.KindBucket})
				}
				agg.RecordAll(classify.SensitiveNames(sensitive, "bucket", "storage", names))
				buckets = filterTargets(catalog.Merge(buckets), cfg.IncludeGlobs, cfg.ExcludeGlobs)
			} else {
				degraded = true
			}
		} else {
			degraded = true
		}
	}

	// RPC names are inspected even when rpc probing stays off.
	for _, r := range rpcs {
		agg.RecordAll(classify.SensitiveNames(sensitive, "rpc", r.Name, []string{r.Name}))
	}

	plan := buildPlan(cfg, tables, rpcs, buckets)

	limiter := ratelimit.New(cfg.MinDelay)
	var matrix []types.MatrixCell
	columnsSeen := map[string][]string{}
	issued := 0

	for i, p := range plan {
		if ctx.Err() != nil {
			break // run-level budget exceeded; stop issuing probes
		}
		id := ids.Resolve(p.tier)
		if id.Available {
			// not_applicable probes touch no network and need no pacing
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		out := client.Execute(p.target, id, p.kind)
		if out.Class != types.OutcomeNotApplicable {
			issued++
		}
		if cfg.Matrix {
			matrix = append(matrix, types.MatrixCell{
				Target: out.Target, Tier: out.Tier, Kind: out.Kind,
				Class: out.Class, Status: out.Status,
			})
		}
		if f, ok := classify.Outcome(out); ok {
			agg.Record(f)
		}
		// column names come from the shared-key read, once per table
		if p.kind == types.ProbeRead && p.tier == types.TierSharedKey && len(out.Columns) > 0 {
			columnsSeen[p.target.Name] = out.Columns
		}
		if cfg.Progress != nil {
			cfg.Progress(i+1, len(plan))
		}
	}

	for table, cols := range columnsSeen {
		agg.RecordAll(classify.SensitiveNames(sensitive, "column", table, cols))
	}

	rep := report.Build(report.Meta{
		Tool:    cfg.Tool,
		Version: cfg.Version,
		Source:  cfg.BaseURL,
		Matrix:  matrix,
		Stats: types.Stats{
			ProbesPlanned: len(plan),
			ProbesIssued:  issued,
			Targets:       len(tables) + len(rpcs) + len(buckets),
			Duration:      time.Since(start).Round(time.Millisecond).String(),
			Degraded:      degraded,
		},
	}, snapshotOptions(cfg), agg)

	return Result{Report: rep, Degraded: degraded}, nil
}

// buildPlan enumerates the identity x target x kind combinations for a run.
// Read-class probes go to every enabled tier; mutations, inserts and rpc
// invocations never run under the user token, whose purpose is read-breadth
// comparison only.
func buildPlan(cfg Config, tables, rpcs, buckets []types.Target) []plannedProbe {
	readTiers := []types.IdentityTier{types.TierSharedKey}
	if cfg.NoAuth || cfg.Matrix {
		readTiers = append([]types.IdentityTier{types.TierNoAuth}, readTiers...)
	}
	if cfg.Matrix {
		readTiers = append(readTiers, types.TierUserToken)
	}
	writeTiers := []types.IdentityTier{types.TierSharedKey}
	if cfg.NoAuth || cfg.Matrix {
		writeTiers = append([]types.IdentityTier{types.TierNoAuth}, writeTiers...)
	}

	var plan []plannedProbe
	add := func(t types.Target, tiers []types.IdentityTier, kinds ...types.ProbeKind) {
		for _, tier := range tiers {
			for _, k := range kinds {
				plan = append(plan, plannedProbe{target: t, tier: tier, kind: k})
			}
		}
	}
	for _, t := range tables {
		add(t, readTiers, types.ProbeRead)
		if cfg.Sample {
			add(t, writeTiers, types.ProbeReadSample)
		}
		if cfg.Mutations {
			add(t, writeTiers, types.ProbeMutatePatch, types.ProbeMutateDel)
		}
		if cfg.Inserts {
			add(t, writeTiers, types.ProbeMutateIns)
		}
	}
	if cfg.RPC {
		for _, r := range rpcs {
			add(r, writeTiers, types.ProbeRPCInvoke)
		}
	}
	for _, b := range buckets {
		add(b, readTiers, types.ProbeListObjects)
	}
	return plan
}

// filterTargets applies include/exclude doublestar globs to target names.
func filterTargets(ts []types.Target, include, exclude string) []types.Target {
	inc := splitGlobs(include)
	exc := splitGlobs(exclude)
	if len(inc) == 0 && len(exc) == 0 {
		return ts
	}
	var out []types.Target
	for _, t := range ts {
		if len(inc) > 0 && !matchAny(inc, t.Name) {
			continue
		}
		if matchAny(exc, t.Name) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func splitGlobs(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func matchAny(globs []string, name string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}

func snapshotOptions(cfg Config) types.Options {
	return types.Options{
		Discovery:      cfg.Discovery,
		NoAuth:         cfg.NoAuth,
		Matrix:         cfg.Matrix,
		RPC:            cfg.RPC,
		Mutations:      cfg.Mutations,
		Inserts:        cfg.Inserts,
		Storage:        cfg.Storage,
		Sample:         cfg.Sample,
		Strict:         cfg.Strict,
		SensitiveTerms: cfg.SensitiveTerms,
		MutationFilter: cfg.MutationFilter,
		MinDelay:       cfg.MinDelay.String(),
	}
}
