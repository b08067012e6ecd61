package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OptLevel != 0 || cfg.Output != "" || len(cfg.LinkerInputs) != 0 {
		t.Fatalf("expected zero Config, got %+v", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := "optLevel: 2\noutput: build/out\nlinkerInputs:\n  - rt.o\n  - extra.a\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OptLevel != 2 {
		t.Fatalf("expected OptLevel 2, got %d", cfg.OptLevel)
	}
	if cfg.Output != "build/out" {
		t.Fatalf("expected Output build/out, got %q", cfg.Output)
	}
	if len(cfg.LinkerInputs) != 2 || cfg.LinkerInputs[0] != "rt.o" || cfg.LinkerInputs[1] != "extra.a" {
		t.Fatalf("expected two linker inputs, got %v", cfg.LinkerInputs)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("optLevel: [not a scalar"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected an error parsing malformed yaml")
	}
}
