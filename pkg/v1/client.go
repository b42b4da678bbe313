// Package v1 provides programmatic access to lod workspaces for tools
// that embed description tracking instead of shelling out to the CLI.
package v1

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/4thel00z/lod/internal"
)

// Client operates on an initialized lod workspace.
type Client struct {
	ws      internal.Workspace
	cfg     *internal.Config
	index   *internal.HashIndex
	tracker *internal.Tracker
}

// New opens the workspace for the given options. The workspace must
// already be initialized.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	root := cfg.root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	ws, err := internal.FindWorkspace(root)
	if err != nil {
		return nil, err
	}

	conf, err := internal.LoadConfig(ws)
	if err != nil {
		return nil, err
	}
	if cfg.provider != "" {
		conf.Provider = cfg.provider
	}
	if cfg.workers > 0 {
		conf.Workers = cfg.workers
	}

	index, err := internal.OpenIndex(ws.IndexPath())
	if err != nil {
		return nil, err
	}

	return &Client{
		ws:      ws,
		cfg:     conf,
		index:   index,
		tracker: internal.NewTracker(index, conf.HistoryLimit),
	}, nil
}

// Generate runs the description pipeline over the workspace.
func (c *Client) Generate(ctx context.Context, force bool) (*RunStats, error) {
	generator, err := internal.NewGenerator(ctx, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	pipeline := internal.NewPipeline(c.ws, c.cfg, c.tracker, generator)
	pipeline.Force = force

	stats, err := pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &RunStats{
		Files:     stats.Files,
		Entities:  stats.Entities,
		Generated: stats.Generated,
		Reverted:  stats.Reverted,
		Skipped:   stats.Skipped,
		Failed:    stats.Failed,
	}, nil
}

// Status classifies every tracked entity and returns the totals.
func (c *Client) Status(ctx context.Context) (*Report, error) {
	pipeline := internal.NewPipeline(c.ws, c.cfg, c.tracker, nil)
	files, err := pipeline.SourceFiles()
	if err != nil {
		return nil, err
	}

	var entities []internal.Entity
	for _, rel := range files {
		parsed, err := internal.ParseFile(ctx, c.ws.Root, filepath.Join(c.ws.Root, rel))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		entities = append(entities, parsed...)
	}

	report, err := c.tracker.CheckBatch(ctx, entities)
	if err != nil {
		return nil, err
	}
	return &Report{
		Total: report.Total,
		Fresh: report.FreshCount,
		Stale: report.StaleCount,
	}, nil
}

// Read returns the stored descriptions for one source file, relative to
// the workspace root.
func (c *Client) Read(ctx context.Context, rel string) ([]Description, error) {
	content, err := os.ReadFile(c.ws.SidecarPath(rel))
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	var descriptions []Description
	for _, f := range internal.ParseSidecar(string(content)) {
		scope, name := internal.SignatureInfo(f.Signature)
		descriptions = append(descriptions, Description{
			Scope:       scope.String(),
			Name:        name,
			Path:        rel,
			Fingerprint: f.Fingerprint,
			Stale:       f.Stale,
			Text:        f.Description,
		})
	}
	return descriptions, nil
}

// Invalidate flags a fingerprint's description stale.
func (c *Client) Invalidate(ctx context.Context, fingerprint string) error {
	return c.tracker.Invalidate(ctx, fingerprint)
}

// Close releases the index database.
func (c *Client) Close() error {
	return c.index.Close()
}
