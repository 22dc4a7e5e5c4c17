// Package probe issues the single bounded HTTP request behind each probe and
// normalizes the answer. One invocation, one network call, no retries: a
// transport failure is terminal for that probe and reported as inconclusive.
package probe

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/types"
)

// DefaultMutationFilter matches zero rows under expected data: a v4-UUID-shaped
// key that cannot collide with real identifiers. Callers overriding it own the
// blast radius of a malformed predicate.
const DefaultMutationFilter = "id=eq.00000000-0000-0000-0000-000000000000"

const defaultTimeout = 10 * time.Second

// Config shapes request construction. Zero values get safe defaults.
type Config struct {
	BaseURL        string
	RESTPrefix     string // default /rest/v1
	StoragePrefix  string // default /storage/v1
	Timeout        time.Duration
	MutationFilter string // zero-match predicate for PATCH/DELETE
	SampleRows     int    // row cap for read_sample, default 3
}

// Client executes probes against one remote origin.
type Client struct {
	http           *fasthttp.Client
	restBase       string
	storageBase    string
	timeout        time.Duration
	mutationFilter string
	sampleRows     int
}

// NewClient builds a probe client. fasthttp keeps per-request allocation low
// and lets us cap read/write time independently of connection setup.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RESTPrefix == "" {
		cfg.RESTPrefix = "/rest/v1"
	}
	if cfg.StoragePrefix == "" {
		cfg.StoragePrefix = "/storage/v1"
	}
	if cfg.MutationFilter == "" {
		cfg.MutationFilter = DefaultMutationFilter
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 3
	}
	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:              cfg.Timeout,
			WriteTimeout:             cfg.Timeout,
			NoDefaultUserAgentHeader: true,
		},
		restBase:       cfg.BaseURL + cfg.RESTPrefix,
		storageBase:    cfg.BaseURL + cfg.StoragePrefix,
		timeout:        cfg.Timeout,
		mutationFilter: cfg.MutationFilter,
		sampleRows:     cfg.SampleRows,
	}
}

// Execute runs one probe for a (target, identity, kind) triple. An
// unavailable identity or a kind/target mismatch yields not_applicable with
// zero network calls.
func (c *Client) Execute(target types.Target, id identity.Context, kind types.ProbeKind) types.Outcome {
	out := types.Outcome{Target: target, Tier: id.Tier, Kind: kind}
	if !id.Available || !legal(kind, target.Kind) {
		out.Class = types.OutcomeNotApplicable
		return out
	}

	method, url, body, headers := c.request(target, kind)
	status, respBody, err := c.do(method, url, body, id.Headers, headers)
	if err != nil {
		out.Class = types.OutcomeTransportError
		return out
	}
	out.Class = types.OutcomeStatus
	out.Status = status
	if kind == types.ProbeRead || kind == types.ProbeReadSample {
		out.Columns = columnNames(respBody)
	}
	return out
}

// legal reports whether a probe kind applies to a target kind.
func legal(kind types.ProbeKind, tk types.TargetKind) bool {
	switch kind {
	case types.ProbeRead, types.ProbeReadSample, types.ProbeMutatePatch, types.ProbeMutateDel, types.ProbeMutateIns:
		return tk == types.KindTable
	case types.ProbeListObjects:
		return tk == types.KindBucket
	case types.ProbeRPCInvoke:
		return tk == types.KindRPC
	}
	return false
}

func (c *Client) request(target types.Target, kind types.ProbeKind) (method, url string, body []byte, headers map[string]string) {
	switch kind {
	case types.ProbeRead:
		return fasthttp.MethodGet, fmt.Sprintf("%s/%s?select=%%2A&limit=1", c.restBase, target.Name), nil, nil
	case types.ProbeReadSample:
		return fasthttp.MethodGet, fmt.Sprintf("%s/%s?select=%%2A&limit=%d", c.restBase, target.Name, c.sampleRows), nil, nil
	case types.ProbeListObjects:
		return fasthttp.MethodPost, fmt.Sprintf("%s/object/list/%s", c.storageBase, target.Name),
			[]byte(`{"prefix":"","limit":1}`), map[string]string{"Content-Type": "application/json"}
	case types.ProbeMutatePatch:
		return fasthttp.MethodPatch, fmt.Sprintf("%s/%s?%s", c.restBase, target.Name, c.mutationFilter),
			[]byte(`{}`), map[string]string{"Content-Type": "application/json", "Prefer": "return=minimal"}
	case types.ProbeMutateDel:
		return fasthttp.MethodDelete, fmt.Sprintf("%s/%s?%s", c.restBase, target.Name, c.mutationFilter),
			nil, map[string]string{"Prefer": "return=minimal"}
	case types.ProbeMutateIns:
		return fasthttp.MethodPost, fmt.Sprintf("%s/%s", c.restBase, target.Name),
			[]byte(`{}`), map[string]string{"Content-Type": "application/json", "Prefer": "return=minimal"}
	case types.ProbeRPCInvoke:
		return fasthttp.MethodPost, fmt.Sprintf("%s/rpc/%s", c.restBase, target.Name),
			[]byte(`{}`), map[string]string{"Content-Type": "application/json"}
	}
	// unreachable: legal() gates kinds before request construction
	return fasthttp.MethodGet, c.restBase, nil, nil
}

// FetchDiscovery retrieves the self-description document from the REST root.
func (c *Client) FetchDiscovery(id identity.Context) (status int, body []byte, err error) {
	return c.do(fasthttp.MethodGet, c.restBase+"/", nil, id.Headers, nil)
}

// FetchBuckets retrieves the storage bucket listing.
func (c *Client) FetchBuckets(id identity.Context) (status int, body []byte, err error) {
	return c.do(fasthttp.MethodGet, c.storageBase+"/bucket", nil, id.Headers, nil)
}

func (c *Client) do(method, url string, body []byte, identityHeaders, extraHeaders map[string]string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "keygate")
	for k, v := range identityHeaders {
		req.Header.Set(k, v)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.SetBody(body)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return 0, nil, err
	}
	// resp body is recycled on release
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return resp.StatusCode(), out, nil
}

// columnNames extracts key names from the first object of a JSON array body.
// Any parse failure means "no metadata": the status-based classification is
// unaffected.
func columnNames(body []byte) []string {
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
