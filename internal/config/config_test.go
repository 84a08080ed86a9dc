package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blockedit.yaml")
	data := []byte("log-level: debug\nprefix: page\nschema: defs/page.yaml\noutput: form\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BLOCKEDIT_RENDERER", "text")
	t.Setenv("BLOCKEDIT_PREFIX", "article")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		LogLevel: "debug",
		Prefix:   "article",
		Renderer: "text",
		Schema:   "defs/page.yaml",
		Output:   OutputForm,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	level, err := cfg.Level()
	if err != nil || level != zerolog.DebugLevel {
		t.Fatalf("level = %v, %v", level, err)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Parse([]byte("prefix: [")); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("BLOCKEDIT_OUTPUT", "xml")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected validation error for output format")
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "chatty"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected log level error")
	}
}
