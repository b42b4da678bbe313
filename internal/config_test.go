package internal

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != "mock" {
		t.Errorf("provider = %q, want mock", cfg.Provider)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "go" {
		t.Errorf("languages = %v", cfg.Languages)
	}
	if cfg.HistoryLimit != DefaultHistoryLimit {
		t.Errorf("history limit = %d", cfg.HistoryLimit)
	}
	if cfg.Providers == nil {
		t.Error("providers map not initialized")
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	ws, err := InitWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("init workspace: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Provider = "anthropic"
	cfg.Languages = []string{"go", "python"}
	cfg.Providers["anthropic"] = ProviderConfig{
		APIKey: "sk-test",
		Model:  "claude-3-5-haiku-latest",
	}
	cfg.Models.Function = "small-model"
	cfg.Models.Default = "big-model"

	if err := SaveConfig(ws, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig(ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Provider != "anthropic" {
		t.Errorf("provider = %q", loaded.Provider)
	}
	if !loaded.SupportsLanguage("python") {
		t.Error("python not supported after load")
	}
	if loaded.SupportsLanguage("rust") {
		t.Error("rust unexpectedly supported")
	}
	if p, ok := loaded.Providers["anthropic"]; !ok {
		t.Error("provider config lost")
	} else if p.APIKey != "sk-test" {
		t.Errorf("api key = %q", p.APIKey)
	}
	if loaded.Models.ForScope(ScopeFunction) != "small-model" {
		t.Errorf("function model = %q", loaded.Models.ForScope(ScopeFunction))
	}
	if loaded.Models.ForScope(ScopeClass) != "big-model" {
		t.Errorf("class model fallback = %q", loaded.Models.ForScope(ScopeClass))
	}
}

func TestLoadConfigMissing(t *testing.T) {
	ws, err := InitWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("init workspace: %v", err)
	}

	cfg, err := LoadConfig(ws)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider != "mock" {
		t.Errorf("missing config should yield defaults, got provider %q", cfg.Provider)
	}
}
