// Package catalog assembles the set of probeable targets for a run from a
// static allowlist and/or the API's self-description document. The catalog
// is built once and read-only during probing.
package catalog

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/keygate/keygate/internal/types"
)

// ErrNoPaths means the self-description document lacked its paths mapping.
// Recoverable when an allowlist exists; fatal when discovery was the only
// target source.
var ErrNoPaths = errors.New("self-description document has no paths key")

// ParseAllowlist parses table names, one per line. Comment suffixes after
// '#' and surrounding whitespace are stripped, blank lines dropped, exact
// duplicates collapsed. Order follows first appearance; Merge sorts.
func ParseAllowlist(content string) []types.Target {
	seen := map[string]bool{}
	var out []types.Target
	for _, line := range strings.Split(content, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		name := strings.TrimSpace(line)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, types.Target{Name: name, Kind: types.KindTable})
	}
	return out
}

// ParseDiscovery extracts targets from a PostgREST-style self-description
// body: first path segments become tables, second segments under the
// reserved /rpc/ segment become RPC targets. Results are deduplicated and
// sorted for deterministic iteration.
func ParseDiscovery(body []byte) (tables, rpcs []types.Target, err error) {
	var doc struct {
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, ErrNoPaths
	}
	if doc.Paths == nil {
		return nil, nil, ErrNoPaths
	}
	tseen, rseen := map[string]bool{}, map[string]bool{}
	for path := range doc.Paths {
		if i := strings.Index(path, "?"); i >= 0 {
			path = path[:i]
		}
		segs := strings.Split(strings.Trim(path, "/"), "/")
		if len(segs) == 0 || segs[0] == "" {
			continue
		}
		if segs[0] == "rpc" {
			if len(segs) >= 2 && segs[1] != "" && !rseen[segs[1]] {
				rseen[segs[1]] = true
				rpcs = append(rpcs, types.Target{Name: segs[1], Kind: types.KindRPC})
			}
			continue
		}
		if !tseen[segs[0]] {
			tseen[segs[0]] = true
			tables = append(tables, types.Target{Name: segs[0], Kind: types.KindTable})
		}
	}
	sortTargets(tables)
	sortTargets(rpcs)
	return tables, rpcs, nil
}

// Merge unions target sets, deduplicating by (kind, name) and sorting by
// kind then name. Idempotent: merging the same inputs twice changes nothing.
func Merge(sets ...[]types.Target) []types.Target {
	seen := map[types.Target]bool{}
	var out []types.Target
	for _, set := range sets {
		for _, t := range set {
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	sortTargets(out)
	return out
}

func sortTargets(ts []types.Target) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Kind != ts[j].Kind {
			return ts[i].Kind < ts[j].Kind
		}
		return ts[i].Name < ts[j].Name
	})
}
