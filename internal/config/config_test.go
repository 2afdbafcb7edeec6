package config

import (
	"os"
	"testing"
)

const sampleConfig = `
log_level: debug
llm:
  base_url: http://localhost:9999/v1
  api_key: dummy
  model: gpt-4o
probe:
  prompt: "ping"
  blocking: true
capture:
  enabled: true
`

// TestLoad_File verifies that Load unmarshals an explicit config file.
func TestLoad_File(t *testing.T) {
	// Write config to temp file
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log_level: %s", cfg.LogLevel)
	}
	if cfg.LLM.BaseURL != "http://localhost:9999/v1" {
		t.Fatalf("unexpected base_url: %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.Probe.Prompt != "ping" {
		t.Fatalf("unexpected prompt: %s", cfg.Probe.Prompt)
	}
	if !cfg.Probe.Blocking {
		t.Fatalf("expected blocking mode")
	}
	if !cfg.Capture.Enabled {
		t.Fatalf("expected capture enabled")
	}
}

// TestLoad_Defaults verifies that a missing config file yields the defaults
// matching the local proxy.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.BaseURL != "http://127.0.0.1:3000/v1" {
		t.Fatalf("unexpected base_url: %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "gemini-3-pro-high" {
		t.Fatalf("unexpected model: %s", cfg.LLM.Model)
	}
	if cfg.Probe.Blocking {
		t.Fatalf("blocking should default to false")
	}
	if cfg.Capture.Enabled {
		t.Fatalf("capture should default to false")
	}
}
