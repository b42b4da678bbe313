package main

import (
	"context"
	"fmt"
	"os"

	"github.com/4thel00z/lod/internal"
	"github.com/charmbracelet/fang"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()

	if tryExternalCommand(ctx) {
		return
	}

	rootCmd := NewRootCmd(version, loadEnv)
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

func tryExternalCommand(ctx context.Context) bool {
	if len(os.Args) < 2 {
		return false
	}

	cmd := os.Args[1]
	if cmd == "" || cmd[0] == '-' {
		return false
	}

	if _, err := findExternal(cmd); err != nil {
		return false
	}

	if err := executeExternal(ctx, cmd, os.Args[2:], version); err != nil {
		fmt.Fprintf(os.Stderr, "lod %s: %v\n", cmd, err)
		os.Exit(1)
	}

	return true
}

// env bundles everything a command needs against an initialized
// workspace. Commands that never touch the index should not pay for
// opening it, so loading is deferred behind envFunc.
type env struct {
	ws      internal.Workspace
	cfg     *internal.Config
	index   *internal.HashIndex
	tracker *internal.Tracker
}

func (e *env) Close() error {
	return e.index.Close()
}

type envFunc func() (*env, error)

func loadEnv() (*env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	ws, err := internal.FindWorkspace(cwd)
	if err != nil {
		return nil, err
	}

	cfg, err := internal.LoadConfig(ws)
	if err != nil {
		return nil, err
	}

	index, err := internal.OpenIndex(ws.IndexPath())
	if err != nil {
		return nil, err
	}

	return &env{
		ws:      ws,
		cfg:     cfg,
		index:   index,
		tracker: internal.NewTracker(index, cfg.HistoryLimit),
	}, nil
}
