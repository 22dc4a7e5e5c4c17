package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Bucket is one entry from the storage bucket listing, fetched once per run
// under the shared-key tier only. Public is a fact observed in the listing
// itself, so it produces a finding directly rather than via a probe.
type Bucket struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// ParseBuckets decodes a bucket-listing response body. Entries without an
// identifier are dropped; names fall back to IDs. Sorted by identifier.
func ParseBuckets(body []byte) ([]Bucket, error) {
	var raw []Bucket
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("bucket listing: %w", err)
	}
	var out []Bucket
	for _, b := range raw {
		if b.ID == "" {
			if b.Name == "" {
				continue
			}
			b.ID = b.Name
		}
		if b.Name == "" {
			b.Name = b.ID
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
