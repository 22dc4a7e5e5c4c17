package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/keygate/keygate/internal/types"
)

func TestAppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir)

	for i := 0; i < 3; i++ {
		err := l.Append(Record{
			Timestamp: time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC),
			Source:    "https://example.test",
			Summary:   types.Summary{High: i},
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recs, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d", len(recs))
	}
	// newest first
	if recs[0].Summary.High != 2 || recs[2].Summary.High != 0 {
		t.Fatalf("order wrong: %+v", recs)
	}
	if recs[0].RunID == "" {
		t.Fatal("run id not assigned")
	}
}

func TestLoad_SkipsTrailingGarbage(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir)
	if err := l.Append(Record{Source: "https://a.test"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "runs.jsonl"), os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{broken json\n")
	_ = f.Close()

	recs, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d", len(recs))
	}
}

func TestFromReport(t *testing.T) {
	r := types.Report{
		GeneratedAt: time.Now(),
		Source:      "https://proj.test",
		Summary:     types.Summary{High: 1, Medium: 2},
		Stats:       types.Stats{ProbesIssued: 9},
	}
	rec := FromReport(r)
	if rec.Source != r.Source || rec.Summary != r.Summary || rec.Stats.ProbesIssued != 9 {
		t.Fatalf("rec = %+v", rec)
	}
}
