package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// skipDirs are directory names never walked for source files.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	LodDirName:     true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
	".vscode":      true,
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Files     int64
	Entities  int64
	Generated int64
	Reverted  int64
	Skipped   int64
	Failed    int64
}

func (s *RunStats) String() string {
	return fmt.Sprintf("%d files, %d entities: %d generated, %d reverted, %d skipped, %d failed",
		s.Files, s.Entities, s.Generated, s.Reverted, s.Skipped, s.Failed)
}

// Pipeline walks the workspace, parses configured languages, generates
// descriptions for entities that need them, and mirrors the result into
// sidecar files. Files are processed concurrently; entities within a
// file sequentially, in source order.
type Pipeline struct {
	ws        Workspace
	cfg       *Config
	tracker   *Tracker
	generator Generator

	// Force regenerates every entity regardless of freshness.
	Force bool
	// Subpath, when set, restricts the run to files under this path
	// relative to the workspace root.
	Subpath string
	// Progress, when set, is called after each finished file.
	Progress func(done, total int)
}

func NewPipeline(ws Workspace, cfg *Config, tracker *Tracker, generator Generator) *Pipeline {
	return &Pipeline{
		ws:        ws,
		cfg:       cfg,
		tracker:   tracker,
		generator: generator,
	}
}

// SourceFiles lists workspace files in configured languages, paths
// relative to the workspace root, sorted. A Subpath narrows the walk to
// that subtree (or single file).
func (p *Pipeline) SourceFiles() ([]string, error) {
	start := p.ws.Root
	if p.Subpath != "" {
		start = filepath.Join(p.ws.Root, filepath.Clean(p.Subpath))
	}

	var files []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != start && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		language := DetectLanguage(path)
		if language == "" || !p.cfg.SupportsLanguage(language) {
			return nil
		}
		rel, err := filepath.Rel(p.ws.Root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk workspace: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// Run processes every source file. Per-entity generation failures are
// logged and counted, not fatal; a failed entity keeps its previous
// record untouched.
func (p *Pipeline) Run(ctx context.Context) (*RunStats, error) {
	files, err := p.SourceFiles()
	if err != nil {
		return nil, err
	}

	stats := &RunStats{}
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, rel := range files {
		g.Go(func() error {
			if err := p.runFile(ctx, rel, stats); err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			if p.Progress != nil {
				p.Progress(int(done.Add(1)), len(files))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (p *Pipeline) runFile(ctx context.Context, rel string, stats *RunStats) error {
	entities, err := ParseFile(ctx, p.ws.Root, filepath.Join(p.ws.Root, rel))
	if err != nil {
		return err
	}
	atomic.AddInt64(&stats.Files, 1)
	atomic.AddInt64(&stats.Entities, int64(len(entities)))

	var moduleDescription string
	var fragments []Fragment

	for _, e := range entities {
		description, stale, err := p.describe(ctx, e, stats)
		if err != nil {
			return err
		}
		if description == "" {
			continue
		}
		if e.Scope == ScopeModule {
			moduleDescription = description
			continue
		}
		fragments = append(fragments, Fragment{
			Fingerprint: e.Fingerprint,
			Stale:       stale,
			Description: description,
			Signature:   firstLine(e.Source),
		})
	}

	return WriteSidecar(p.ws.SidecarPath(rel), RenderSidecar(moduleDescription, fragments))
}

// describe resolves an entity's description, generating a new one when
// the entity is stale or unknown. The returned stale flag reflects the
// record state after this call.
func (p *Pipeline) describe(ctx context.Context, e Entity, stats *RunStats) (string, bool, error) {
	freshness, record, err := p.tracker.Check(ctx, e)
	if err != nil {
		return "", false, err
	}

	if !p.Force && freshness == Fresh && record != nil {
		if record.Fingerprint != e.Fingerprint {
			// Revert to a previously described version; re-point the
			// identity and reuse the description.
			if err := p.tracker.RecordGenerated(ctx, e, record.Description); err != nil {
				return "", false, err
			}
			atomic.AddInt64(&stats.Reverted, 1)
		} else {
			atomic.AddInt64(&stats.Skipped, 1)
		}
		return record.Description, false, nil
	}

	description, err := p.generator.Generate(ctx, e, "")
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		Logger().Warn("description generation failed",
			slog.String("entity", e.Identity()),
			slog.String("error", err.Error()),
		)
		if record != nil {
			return record.Description, freshness == Stale, nil
		}
		return "", false, nil
	}

	if err := p.tracker.RecordGenerated(ctx, e, description); err != nil {
		return "", false, err
	}
	atomic.AddInt64(&stats.Generated, 1)
	return description, false, nil
}

// Plan renders the sidecar content every file would have if reconciled
// against the index right now, without generating or writing anything.
// Keys are sidecar paths, values the rendered bodies. Entities the index
// has never seen are omitted.
func (p *Pipeline) Plan(ctx context.Context) (map[string]string, error) {
	files, err := p.SourceFiles()
	if err != nil {
		return nil, err
	}

	plan := make(map[string]string, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, rel := range files {
		g.Go(func() error {
			content, err := p.planFile(ctx, rel)
			if err != nil {
				return fmt.Errorf("%s: %w", rel, err)
			}
			mu.Lock()
			plan[p.ws.SidecarPath(rel)] = content
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (p *Pipeline) planFile(ctx context.Context, rel string) (string, error) {
	entities, err := ParseFile(ctx, p.ws.Root, filepath.Join(p.ws.Root, rel))
	if err != nil {
		return "", err
	}

	var moduleDescription string
	var fragments []Fragment

	for _, e := range entities {
		freshness, record, err := p.tracker.Check(ctx, e)
		if err != nil {
			return "", err
		}
		if record == nil {
			continue
		}
		if e.Scope == ScopeModule {
			moduleDescription = record.Description
			continue
		}
		fragments = append(fragments, Fragment{
			Fingerprint: e.Fingerprint,
			Stale:       freshness == Stale,
			Description: record.Description,
			Signature:   firstLine(e.Source),
		})
	}

	return RenderSidecar(moduleDescription, fragments), nil
}

func firstLine(source string) string {
	line, _, _ := strings.Cut(source, "\n")
	return strings.TrimRight(line, " \t")
}
