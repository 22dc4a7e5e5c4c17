package core_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keygate/keygate/pkg/core"
)

func TestAudit_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") == "" {
			w.WriteHeader(401)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	cfg := core.Config{
		BaseURL:   srv.URL,
		SharedKey: "anon-key",
		Allowlist: "users\n",
		Tool:      "keygate",
		Version:   "test",
		Timeout:   5 * time.Second,
	}
	res, err := core.Audit(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if res.Report.Summary.Medium != 1 {
		t.Fatalf("summary = %+v", res.Report.Summary)
	}
	if core.ShouldFail(res.Report.Summary, true) {
		t.Fatal("no High findings, strict gate must pass")
	}

	var buf bytes.Buffer
	if err := core.MarshalReport(&buf, res.Report); err != nil {
		t.Fatalf("MarshalReport: %v", err)
	}
	back, err := core.UnmarshalReport(&buf)
	if err != nil {
		t.Fatalf("UnmarshalReport: %v", err)
	}
	if back.Summary != res.Report.Summary {
		t.Fatal("report round trip mismatch")
	}
}
