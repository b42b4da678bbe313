package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Fragment is one annotated block in a sidecar file: fingerprint, stale
// flag, description, and the entity's literal signature line for human
// cross-reference. Sidecars are a projection of the index, never the truth.
type Fragment struct {
	Fingerprint string `json:"hash"`
	Stale       bool   `json:"stale"`
	Description string `json:"description"`
	Signature   string `json:"signature,omitempty"`
	StartLine   int    `json:"-"`
	EndLine     int    `json:"-"`
}

func (f Fragment) complete() bool {
	return f.Fingerprint != "" && f.Description != ""
}

var lodLine = regexp.MustCompile(`^#\s*@lod\s+(\w+):\s*(.*)$`)

// ParseSidecar extracts fragments from sidecar content. Malformed
// fragments are skipped and logged, never fatal to the rest of the file.
func ParseSidecar(content string) []Fragment {
	var fragments []Fragment
	current := Fragment{}
	flush := func(line int) {
		if current.complete() {
			current.EndLine = line
			fragments = append(fragments, current)
		} else if current.Fingerprint != "" {
			// A hash with no description line; a bare description block is
			// the module header and passes silently.
			Logger().Warn("skipping malformed sidecar fragment",
				slog.Int("line", current.StartLine),
			)
		}
		current = Fragment{}
	}

	for i, line := range strings.Split(content, "\n") {
		m := lodLine.FindStringSubmatch(line)
		if m == nil {
			trimmed := strings.TrimSpace(line)
			switch {
			case current.Description != "" && strings.HasPrefix(trimmed, "#"):
				// Continuation of a multi-line description. The newline is
				// kept so formatting survives a parse-render round trip.
				current.Description += "\n" + strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			case current.complete() && trimmed != "":
				current.Signature = trimmed
				flush(i + 1)
			}
			continue
		}

		key, value := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		switch key {
		case "hash":
			// "hash:sha256:... stale:true" may share a line.
			parts := strings.Fields(value)
			if len(parts) == 0 || !FingerprintPattern.MatchString(parts[0]) {
				Logger().Warn("skipping fragment with invalid fingerprint",
					slog.Int("line", i+1),
					slog.String("value", value),
				)
				current = Fragment{}
				continue
			}
			flush(i)
			current.Fingerprint = parts[0]
			current.StartLine = i + 1
			for _, part := range parts[1:] {
				if rest, ok := strings.CutPrefix(part, "stale:"); ok {
					current.Stale = parseBool(rest)
				}
			}
		case "stale":
			current.Stale = parseBool(value)
		case "description":
			if current.Description != "" {
				current.Description += "\n" + value
			} else {
				current.Description = value
			}
		}
	}
	flush(0)

	return fragments
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// FormatFragment renders a fragment in the sidecar grammar.
func FormatFragment(f Fragment) string {
	var lines []string

	stale := "stale:false"
	if f.Stale {
		stale = "stale:true"
	}
	lines = append(lines, fmt.Sprintf("# @lod hash:%s %s", f.Fingerprint, stale))

	desc := strings.Split(f.Description, "\n")
	lines = append(lines, "# @lod description:"+desc[0])
	for _, d := range desc[1:] {
		lines = append(lines, "# "+d)
	}

	if f.Signature != "" {
		lines = append(lines, f.Signature)
	}
	return strings.Join(lines, "\n")
}

// RenderSidecar produces the full sidecar file body: an optional
// module-level description header followed by one fragment per entity in
// source order. Rendering is deterministic so reconciliation is
// byte-idempotent.
func RenderSidecar(moduleDescription string, fragments []Fragment) string {
	var parts []string
	if moduleDescription != "" {
		desc := strings.Split(moduleDescription, "\n")
		header := "# @lod description:" + desc[0]
		for _, d := range desc[1:] {
			header += "\n# " + d
		}
		parts = append(parts, header+"\n")
	}
	for _, f := range fragments {
		parts = append(parts, FormatFragment(f))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// WriteSidecar writes content to path, creating parents, skipping the
// write when the file already holds identical bytes.
func WriteSidecar(path, content string) error {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == content {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create sidecar directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}
	return nil
}

// SeedIndex rebuilds index records from sidecar fragments. This is the
// explicit recovery path for a lost or rebuilt index: each fragment seeds
// fingerprint -> description, with empty history; sidecars carry only the
// current fingerprint, so history fidelity is never revived. Fingerprints
// already present in the index are left untouched.
func SeedIndex(ctx context.Context, ws Workspace, index *HashIndex) (int, error) {
	seeded := 0

	err := filepath.WalkDir(ws.SidecarDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".lod") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		content, err := os.ReadFile(path)
		if err != nil {
			Logger().Warn("skipping unreadable sidecar", slog.String("path", path))
			return nil
		}

		for _, frag := range ParseSidecar(string(content)) {
			if _, err := index.Get(ctx, frag.Fingerprint); err == nil {
				continue
			} else if !errors.Is(err, ErrNotFound) {
				return err
			}
			if err := index.Set(ctx, frag.Fingerprint, frag.Description, frag.Stale, nil); err != nil {
				return err
			}
			seeded++
		}
		return nil
	})
	if err != nil {
		return seeded, fmt.Errorf("seed index: %w", err)
	}
	return seeded, nil
}

// SignatureInfo guesses scope and name from a fragment's signature line.
// Best effort: sidecars are read back only for reporting.
func SignatureInfo(signature string) (Scope, string) {
	fields := strings.Fields(signature)
	if len(fields) < 2 {
		return ScopeFunction, "<unknown>"
	}

	name := func(s string) string {
		s = strings.SplitN(s, "(", 2)[0]
		s = strings.SplitN(s, ":", 2)[0]
		return strings.TrimSpace(s)
	}

	switch fields[0] {
	case "class":
		return ScopeClass, name(fields[1])
	case "def", "async":
		if fields[0] == "async" && len(fields) > 2 {
			return ScopeFunction, name(fields[2])
		}
		return ScopeFunction, name(fields[1])
	case "func":
		n := fields[1]
		if strings.HasPrefix(n, "(") && len(fields) > 3 {
			// Method receiver: func (r *T) Name(...)
			return ScopeFunction, name(fields[3])
		}
		return ScopeFunction, name(n)
	case "type":
		return ScopeClass, name(fields[1])
	}
	return ScopeFunction, "<unknown>"
}
