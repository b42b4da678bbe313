package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Parser extracts describable entities from source text. Implementations
// register themselves by language tag; selection is by configuration, not
// source-language dispatch.
type Parser interface {
	Language() string
	Parse(ctx context.Context, source []byte, path string) ([]Entity, error)
}

var parserRegistry = map[string]func() Parser{}

func RegisterParser(language string, constructor func() Parser) {
	parserRegistry[language] = constructor
}

func NewParser(language string) (Parser, error) {
	constructor, ok := parserRegistry[language]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}
	return constructor(), nil
}

var languageByExt = map[string]string{
	".go": "go",
	".py": "python",
}

// DetectLanguage maps a file path to a registered language tag, or "".
func DetectLanguage(path string) string {
	return languageByExt[filepath.Ext(path)]
}

// ParseFile reads and parses one source file. Entity locations carry the
// path relative to root when possible.
func ParseFile(ctx context.Context, root, path string) ([]Entity, error) {
	language := DetectLanguage(path)
	if language == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, path)
	}

	parser, err := NewParser(language)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	rel := path
	if r, err := filepath.Rel(root, path); err == nil {
		rel = r
	}
	return parser.Parse(ctx, source, rel)
}
