package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "keygate.yaml", "url: https://proj.example.test\nmatrix: true\nmin_delay: 250ms\nsample_rows: 5\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.URL == nil || *cfg.URL != "https://proj.example.test" {
		t.Fatalf("url = %#v", cfg.URL)
	}
	if cfg.Matrix == nil || !*cfg.Matrix {
		t.Fatal("expected matrix=true")
	}
	if cfg.MinDelay == nil || *cfg.MinDelay != "250ms" {
		t.Fatalf("min_delay = %#v", cfg.MinDelay)
	}
	if cfg.SampleRows == nil || *cfg.SampleRows != 5 {
		t.Fatalf("sample_rows = %#v", cfg.SampleRows)
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "keygate.yaml", "sample_rows: 1\n")
	writeTemp(t, dir, ".keygate.yaml", "sample_rows: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.SampleRows == nil || *cfg.SampleRows != 7 {
		t.Fatalf("expected sample_rows=7 from dotfile, got %#v", cfg.SampleRows)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	if _, err := LoadLocal(t.TempDir()); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "keygate"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTemp(t, filepath.Join(dir, "keygate"), "config.yml", "no_color: true\n")
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.NoColor == nil || !*cfg.NoColor {
		t.Fatal("expected no_color=true")
	}
}
