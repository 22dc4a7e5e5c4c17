package probe

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/keygate/keygate/internal/identity"
	"github.com/keygate/keygate/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentitySet(t *testing.T, userToken string) *identity.Set {
	t.Helper()
	s, err := identity.NewSet("anon-key", userToken)
	require.NoError(t, err)
	return s
}

func TestExecute_Read(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"email":"a@b.c","ssn":"x"}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	out := c.Execute(types.Target{Name: "users", Kind: types.KindTable}, ids.Resolve(types.TierSharedKey), types.ProbeRead)

	assert.Equal(t, types.OutcomeStatus, out.Class)
	assert.Equal(t, 200, out.Status)
	assert.Equal(t, "/rest/v1/users?select=%2A&limit=1", gotPath)
	assert.Equal(t, "Bearer anon-key", gotAuth)
	assert.Equal(t, []string{"email", "id", "ssn"}, out.Columns)
}

func TestExecute_NoAuthSendsNoCredentials(t *testing.T) {
	var apikey, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apikey = r.Header.Get("apikey")
		auth = r.Header.Get("Authorization")
		w.WriteHeader(401)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	out := c.Execute(types.Target{Name: "users", Kind: types.KindTable}, ids.Resolve(types.TierNoAuth), types.ProbeRead)

	assert.Equal(t, 401, out.Status)
	assert.Empty(t, apikey)
	assert.Empty(t, auth)
}

func TestExecute_UserTokenAbsent_NoNetworkCall(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	out := c.Execute(types.Target{Name: "users", Kind: types.KindTable}, ids.Resolve(types.TierUserToken), types.ProbeRead)

	assert.Equal(t, types.OutcomeNotApplicable, out.Class)
	assert.EqualValues(t, 0, atomic.LoadInt64(&calls))
}

func TestExecute_KindTargetMismatch(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	ids := newIdentitySet(t, "")
	out := c.Execute(types.Target{Name: "avatars", Kind: types.KindBucket}, ids.Resolve(types.TierSharedKey), types.ProbeRead)
	assert.Equal(t, types.OutcomeNotApplicable, out.Class)
}

func TestExecute_MutationsUseZeroMatchFilter(t *testing.T) {
	type seen struct{ method, uri string }
	var reqs []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs = append(reqs, seen{r.Method, r.URL.RequestURI()})
		w.WriteHeader(204)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	tgt := types.Target{Name: "orders", Kind: types.KindTable}
	sk := ids.Resolve(types.TierSharedKey)

	c.Execute(tgt, sk, types.ProbeMutatePatch)
	c.Execute(tgt, sk, types.ProbeMutateDel)

	require.Len(t, reqs, 2)
	assert.Equal(t, "PATCH", reqs[0].method)
	assert.Equal(t, "/rest/v1/orders?"+DefaultMutationFilter, reqs[0].uri)
	assert.Equal(t, "DELETE", reqs[1].method)
	assert.Equal(t, "/rest/v1/orders?"+DefaultMutationFilter, reqs[1].uri)
}

func TestExecute_RPCAndInsertAndList(t *testing.T) {
	type seen struct{ method, uri, body string }
	var reqs []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		reqs = append(reqs, seen{r.Method, r.URL.RequestURI(), string(buf[:n])})
		w.WriteHeader(200)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	sk := ids.Resolve(types.TierSharedKey)

	c.Execute(types.Target{Name: "get_totals", Kind: types.KindRPC}, sk, types.ProbeRPCInvoke)
	c.Execute(types.Target{Name: "orders", Kind: types.KindTable}, sk, types.ProbeMutateIns)
	c.Execute(types.Target{Name: "avatars", Kind: types.KindBucket}, sk, types.ProbeListObjects)

	require.Len(t, reqs, 3)
	assert.Equal(t, seen{"POST", "/rest/v1/rpc/get_totals", "{}"}, reqs[0])
	assert.Equal(t, seen{"POST", "/rest/v1/orders", "{}"}, reqs[1])
	assert.Equal(t, seen{"POST", "/storage/v1/object/list/avatars", `{"prefix":"","limit":1}`}, reqs[2])
}

func TestExecute_TransportError(t *testing.T) {
	// nothing listens on this port
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	ids := newIdentitySet(t, "")
	out := c.Execute(types.Target{Name: "users", Kind: types.KindTable}, ids.Resolve(types.TierSharedKey), types.ProbeRead)
	assert.Equal(t, types.OutcomeTransportError, out.Class)
	assert.Zero(t, out.Status)
}

func TestColumnNames_MalformedBodyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	out := c.Execute(types.Target{Name: "users", Kind: types.KindTable}, ids.Resolve(types.TierSharedKey), types.ProbeRead)

	// status classification unaffected, metadata omitted
	assert.Equal(t, types.OutcomeStatus, out.Class)
	assert.Equal(t, 200, out.Status)
	assert.Nil(t, out.Columns)
}

func TestFetchDiscoveryAndBuckets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/":
			_, _ = w.Write([]byte(`{"paths":{"/users":{}}}`))
		case "/storage/v1/bucket":
			_, _ = w.Write([]byte(`[{"id":"avatars","public":true}]`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ids := newIdentitySet(t, "")
	sk := ids.Resolve(types.TierSharedKey)

	status, body, err := c.FetchDiscovery(sk)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), `"/users"`)

	status, body, err = c.FetchBuckets(sk)
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Contains(t, string(body), "avatars")
}

func TestSampleReadUsesConfiguredRows(t *testing.T) {
	var uri string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uri = r.URL.RequestURI()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, SampleRows: 5})
	ids := newIdentitySet(t, "")
	c.Execute(types.Target{Name: "users", Kind: types.KindTable}, ids.Resolve(types.TierSharedKey), types.ProbeReadSample)
	assert.Equal(t, "/rest/v1/users?select=%2A&limit=5", uri)
}
