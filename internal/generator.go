package internal

import (
	"context"
	"fmt"
)

// MaxSourceLength caps the amount of source included in a prompt.
const MaxSourceLength = 8192

// Generator produces a natural-language description for a code entity.
// extra carries optional additional context about the codebase.
type Generator interface {
	Generate(ctx context.Context, entity Entity, extra string) (string, error)
}

// NewGenerator builds the generator selected by cfg.Provider. "mock"
// needs no credentials and is the default for fresh workspaces.
func NewGenerator(ctx context.Context, cfg *Config) (Generator, error) {
	if cfg.Provider == "mock" || cfg.Provider == "" {
		return &MockGenerator{}, nil
	}
	return NewFantasyGenerator(ctx, cfg)
}

func buildPrompt(entity Entity, extra string) string {
	var prompt string
	switch entity.Scope {
	case ScopeFunction:
		prompt = fmt.Sprintf(
			"You are a code documentation expert. Generate a clear, concise description of the following function.\n\n"+
				"Function name: %s\nLanguage: %s\n\n"+
				"Provide a 1-2 sentence description of what this function does, its inputs, and its output.",
			entity.QualifiedName(), entity.Language)
	case ScopeClass:
		prompt = fmt.Sprintf(
			"You are a code documentation expert. Generate a clear, concise description of the following class.\n\n"+
				"Class name: %s\nLanguage: %s\n\n"+
				"Provide a 1-2 sentence description of this class's purpose and key functionality.",
			entity.Name, entity.Language)
	case ScopeModule:
		prompt = fmt.Sprintf(
			"You are a code documentation expert. Generate a clear, concise description of the following module.\n\n"+
				"Module name: %s\nLanguage: %s\n\n"+
				"Provide a 2-3 sentence overview of this module's purpose and main exports.",
			entity.Name, entity.Language)
	default:
		prompt = fmt.Sprintf(
			"Generate a concise 1-2 sentence description for this %s named %s in %s.",
			entity.Scope, entity.Name, entity.Language)
	}
	if extra != "" {
		prompt += "\n\nContext: " + extra
	}
	return prompt + "\n\nSource:\n" + truncateSource(entity.Source)
}

func truncateSource(source string) string {
	if len(source) > MaxSourceLength {
		return source[:MaxSourceLength] + "\n... (truncated)"
	}
	return source
}

// MockGenerator emits deterministic placeholder descriptions. Used in
// tests and as the out-of-the-box provider.
type MockGenerator struct{}

func (g *MockGenerator) Generate(_ context.Context, entity Entity, _ string) (string, error) {
	switch entity.Scope {
	case ScopeFunction:
		return fmt.Sprintf("Function %s in %s.", entity.QualifiedName(), entity.Language), nil
	case ScopeClass:
		return fmt.Sprintf("Class %s in %s.", entity.Name, entity.Language), nil
	case ScopeModule:
		return fmt.Sprintf("Module %s written in %s.", entity.Name, entity.Language), nil
	case ScopePackage:
		return fmt.Sprintf("Package %s containing related modules.", entity.Name), nil
	case ScopeProject:
		return fmt.Sprintf("Project at %s.", entity.Location.Path), nil
	}
	return fmt.Sprintf("%s %s.", entity.Scope, entity.Name), nil
}
