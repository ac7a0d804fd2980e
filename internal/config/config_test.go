package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Transport != TransportTelegramExport {
		t.Errorf("Transport = %q, want %q", cfg.Transport, TransportTelegramExport)
	}
	if cfg.FetchFloor != 20 {
		t.Errorf("FetchFloor = %d, want 20", cfg.FetchFloor)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
	if cfg.Strict {
		t.Error("Strict = true, want false")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	content := `{
		"transport": "discord",
		"discord_token": "tok-123",
		"fetch_floor": 50,
		"source_timeout_secs": 15,
		"strict": true
	}`
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Transport != TransportDiscord {
		t.Errorf("Transport = %q, want %q", cfg.Transport, TransportDiscord)
	}
	if cfg.DiscordToken != "tok-123" {
		t.Errorf("DiscordToken = %q, want 'tok-123'", cfg.DiscordToken)
	}
	if cfg.FetchFloor != 50 {
		t.Errorf("FetchFloor = %d, want 50", cfg.FetchFloor)
	}
	if cfg.SourceTimeout() != 15*time.Second {
		t.Errorf("SourceTimeout = %v, want 15s", cfg.SourceTimeout())
	}
	if !cfg.Strict {
		t.Error("Strict = false, want true")
	}
	// Unset scalar keeps the default
	if cfg.Concurrency != 8 {
		t.Errorf("Concurrency = %d, want 8", cfg.Concurrency)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}

func TestMerge_Arrays(t *testing.T) {
	base := &Config{DisabledTools: []string{"messages_fetch", " sources_list "}}
	overlay := &Config{DisabledTools: []string{"messages_fetch", "extra"}}

	merged := Merge(base, overlay)

	want := []string{"messages_fetch", "sources_list", "extra"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, s := range want {
		if merged.DisabledTools[i] != s {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], s)
		}
	}
}

func TestMerge_EmptyArraysStayNil(t *testing.T) {
	merged := Merge(&Config{}, &Config{})
	if merged.DisabledTools != nil {
		t.Errorf("DisabledTools = %v, want nil", merged.DisabledTools)
	}
}
