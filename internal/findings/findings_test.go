package findings

import (
	"sync"
	"testing"

	"github.com/keygate/keygate/internal/types"
)

func TestRecordAndSummary(t *testing.T) {
	a := New()
	a.Record(types.Finding{Severity: types.SevHigh, Category: "table_read", Target: "users"})
	a.Record(types.Finding{Severity: types.SevMed, Category: "table_read", Target: "users"})
	a.Record(types.Finding{Severity: types.SevMed, Category: "bucket_public", Target: "avatars"})
	a.Record(types.Finding{Severity: types.SevLow, Category: "leaked_credential", Target: "x"})

	s := a.Summary()
	if s.High != 1 || s.Medium != 2 || s.Low != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Total() != 4 {
		t.Fatalf("total = %d", s.Total())
	}
}

func TestNoDeduplication(t *testing.T) {
	a := New()
	f := types.Finding{Severity: types.SevMed, Category: "table_read", Target: "users"}
	a.Record(f)
	a.Record(f)
	if got := len(a.All()); got != 2 {
		t.Fatalf("expected duplicates retained, got %d findings", got)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := New()
	a.Record(types.Finding{Category: "table_read", Target: "users"})
	all := a.All()
	all[0].Target = "mutated"
	if a.All()[0].Target != "users" {
		t.Fatal("All must return a copy")
	}
}

func TestRecord_Concurrent(t *testing.T) {
	a := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				a.Record(types.Finding{Severity: types.SevMed, Category: "table_read"})
			}
		}()
	}
	wg.Wait()
	if got := len(a.All()); got != 1000 {
		t.Fatalf("lost findings under concurrency: %d", got)
	}
}
