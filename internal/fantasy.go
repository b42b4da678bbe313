package internal

import (
	"context"
	"fmt"
	"sync"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

// OllamaDefaultBaseURL is the openai-compatible endpoint of a local
// ollama daemon.
const OllamaDefaultBaseURL = "http://localhost:11434/v1"

var defaultModels = map[string]string{
	"openai":     "gpt-4o-mini",
	"anthropic":  "claude-3-5-haiku-latest",
	"openrouter": "openai/gpt-4o-mini",
	"ollama":     "llama3.2",
}

var _ Generator = (*FantasyGenerator)(nil)

// FantasyGenerator produces descriptions through an LLM provider. Models
// are resolved per scope through the configured ModelTable and cached,
// so mixed-scope batches only pay provider setup once per model.
type FantasyGenerator struct {
	provider fantasy.Provider
	fallback string
	models   ModelTable

	mu    sync.Mutex
	cache map[string]fantasy.LanguageModel
}

func NewFantasyGenerator(_ context.Context, cfg *Config) (*FantasyGenerator, error) {
	pc := cfg.Providers[cfg.Provider]

	var provider fantasy.Provider
	var err error

	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(pc.APIKey)}
		if pc.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pc.BaseURL))
		}
		provider, err = openai.New(opts...)

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(pc.APIKey)}
		if pc.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(pc.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case "openrouter":
		opts := []openrouter.Option{openrouter.WithAPIKey(pc.APIKey)}
		provider, err = openrouter.New(opts...)

	case "ollama":
		// ollama speaks the openai wire protocol
		baseURL := pc.BaseURL
		if baseURL == "" {
			baseURL = OllamaDefaultBaseURL
		}
		provider, err = openai.New(openai.WithBaseURL(baseURL), openai.WithAPIKey(pc.APIKey))

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	fallback := pc.Model
	if fallback == "" {
		fallback = defaultModels[cfg.Provider]
	}

	return &FantasyGenerator{
		provider: provider,
		fallback: fallback,
		models:   cfg.Models,
		cache:    make(map[string]fantasy.LanguageModel),
	}, nil
}

func (g *FantasyGenerator) Generate(ctx context.Context, entity Entity, extra string) (string, error) {
	model, err := g.modelForScope(ctx, entity.Scope)
	if err != nil {
		return "", err
	}

	agent := fantasy.NewAgent(model)
	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt: buildPrompt(entity, extra),
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return result.Response.Content.Text(), nil
}

func (g *FantasyGenerator) modelForScope(ctx context.Context, scope Scope) (fantasy.LanguageModel, error) {
	name := g.models.ForScope(scope)
	if name == "" {
		name = g.fallback
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if model, ok := g.cache[name]; ok {
		return model, nil
	}

	model, err := g.provider.LanguageModel(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get language model %s: %w", name, err)
	}
	g.cache[name] = model
	return model, nil
}
