package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/4thel00z/lod/internal"
	"github.com/spf13/cobra"
)

func NewStatusCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Report description freshness",
		Long:  `Classify every tracked entity as fresh, stale, or never described, and print the totals. An optional path restricts the report to that subtree.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeStatusRunner(load),
	}

	cmd.Flags().Bool("stale-only", false, "List only entities needing attention")
	return cmd
}

func makeStatusRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		staleOnly, _ := cmd.Flags().GetBool("stale-only")
		asJSON, _ := cmd.Flags().GetBool("json")

		subpath := ""
		if len(args) > 0 {
			subpath = args[0]
		}

		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := buildReport(cmd.Context(), e, subpath)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		if !staleOnly {
			fmt.Fprintf(cmd.OutOrStdout(), "%d entities: %d fresh, %d stale or unknown\n",
				report.Total, report.FreshCount, report.StaleCount)
		}
		for _, entry := range report.StaleEntries {
			state := "stale"
			if entry.StoredFingerprint == "" {
				state = "unknown"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s %s (%s)\n", state, entry.Scope, entry.Name, entry.Path)
		}
		return nil
	}
}

// buildReport parses every tracked file and classifies its entities.
func buildReport(ctx context.Context, e *env, subpath string) (internal.Report, error) {
	pipeline := internal.NewPipeline(e.ws, e.cfg, e.tracker, nil)
	pipeline.Subpath = subpath
	files, err := pipeline.SourceFiles()
	if err != nil {
		return internal.Report{}, err
	}

	var entities []internal.Entity
	for _, rel := range files {
		parsed, err := internal.ParseFile(ctx, e.ws.Root, filepath.Join(e.ws.Root, rel))
		if err != nil {
			return internal.Report{}, fmt.Errorf("%s: %w", rel, err)
		}
		entities = append(entities, parsed...)
	}

	return e.tracker.CheckBatch(ctx, entities)
}
