package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// ModelTable selects a model per scope, falling back to Default.
type ModelTable struct {
	Default  string `yaml:"default,omitempty"`
	Project  string `yaml:"project,omitempty"`
	Package  string `yaml:"package,omitempty"`
	Module   string `yaml:"module,omitempty"`
	Class    string `yaml:"class,omitempty"`
	Function string `yaml:"function,omitempty"`
}

func (m ModelTable) ForScope(scope Scope) string {
	byScope := map[Scope]string{
		ScopeProject:  m.Project,
		ScopePackage:  m.Package,
		ScopeModule:   m.Module,
		ScopeClass:    m.Class,
		ScopeFunction: m.Function,
	}
	if model := byScope[scope]; model != "" {
		return model
	}
	return m.Default
}

type Config struct {
	Languages    []string                  `yaml:"languages"`
	Provider     string                    `yaml:"provider"`
	Providers    map[string]ProviderConfig `yaml:"providers,omitempty"`
	Models       ModelTable                `yaml:"models,omitempty"`
	FailOnStale  bool                      `yaml:"fail_on_stale,omitempty"`
	AutoCommit   bool                      `yaml:"auto_commit,omitempty"`
	HistoryLimit int                       `yaml:"history_limit,omitempty"`
	Workers      int                       `yaml:"workers,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Languages:    []string{"go"},
		Provider:     "mock",
		Providers:    make(map[string]ProviderConfig),
		HistoryLimit: DefaultHistoryLimit,
		Workers:      4,
	}
}

func LoadConfig(ws Workspace) (*Config, error) {
	data, err := os.ReadFile(ws.ConfigPath())
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &cfg, nil
}

func SaveConfig(ws Workspace, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(ws.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SupportsLanguage reports whether cfg lists the language.
func (c *Config) SupportsLanguage(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
