package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/4thel00z/lod/internal"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func NewWatchCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch sources and regenerate on change",
		Long:  `Watch tracked source files and run the generation pipeline whenever they change, batched by a debounce window.`,
		RunE:  makeWatchRunner(load),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeWatchRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		generator, err := internal.NewGenerator(cmd.Context(), e.cfg)
		if err != nil {
			return fmt.Errorf("create generator: %w", err)
		}
		pipeline := internal.NewPipeline(e.ws, e.cfg, e.tracker, generator)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, e.ws.Root); err != nil {
			return fmt.Errorf("add watch dirs: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", e.ws.Root)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		pending := false

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if shouldIgnoreEvent(event, e.ws.LodDir, e.cfg) {
					continue
				}
				if !pending {
					timer.Reset(debounce)
					pending = true
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
			case <-timer.C:
				pending = false
				stats, runErr := pipeline.Run(cmd.Context())
				if runErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "generate: %v\n", runErr)
					continue
				}
				if stats.Generated > 0 || stats.Reverted > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), stats)
				}
			}
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

func shouldIgnoreEvent(event fsnotify.Event, lodDir string, cfg *internal.Config) bool {
	if strings.HasPrefix(event.Name, lodDir) {
		return true
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return true
	}

	language := internal.DetectLanguage(event.Name)
	return language == "" || !cfg.SupportsLanguage(language)
}
