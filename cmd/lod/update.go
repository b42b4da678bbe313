package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/4thel00z/lod/internal"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

func NewUpdateCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [path]",
		Short: "Reconcile sidecar files with the index",
		Long:  `Rewrite sidecar files so they mirror the index exactly. Never generates descriptions; run generate first for entities the index has not seen. An optional path restricts the rewrite to that subtree.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeUpdateRunner(load),
	}

	cmd.Flags().Bool("dry-run", false, "Show what would change without writing")
	cmd.Flags().BoolP("yes", "y", false, "Write without confirmation")
	return cmd
}

func makeUpdateRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		pipeline := internal.NewPipeline(e.ws, e.cfg, e.tracker, nil)
		if len(args) > 0 {
			pipeline.Subpath = args[0]
		}
		plan, err := pipeline.Plan(cmd.Context())
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(plan))
		for path := range plan {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		changed := 0
		dmp := diffmatchpatch.New()
		for _, path := range paths {
			existing, err := os.ReadFile(path)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("read sidecar: %w", err)
			}
			if string(existing) == plan[path] {
				continue
			}
			changed++

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "--- %s\n", path)
				diffs := dmp.DiffMain(string(existing), plan[path], false)
				fmt.Fprintln(cmd.OutOrStdout(), dmp.DiffPrettyText(diffs))
			}
		}

		if changed == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Sidecars already in sync")
			return nil
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%d sidecar(s) would change\n", changed)
			return nil
		}

		if !yes && !confirm(cmd, fmt.Sprintf("Rewrite %d sidecar(s)?", changed)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}

		for _, path := range paths {
			if err := internal.WriteSidecar(path, plan[path]); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d sidecar(s)\n", changed)
		return nil
	}
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
