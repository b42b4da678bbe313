package main

import (
	"fmt"

	"github.com/4thel00z/lod/internal"
	"github.com/spf13/cobra"
)

func NewGenerateCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate descriptions for changed entities",
		Long:  `Parse tracked source files and generate descriptions for entities whose content changed since the last run. Unchanged entities are skipped. An optional path restricts the run to that subtree.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  makeGenerateRunner(load),
	}

	cmd.Flags().Bool("force", false, "Regenerate all descriptions regardless of freshness")
	cmd.Flags().Int("workers", 0, "Concurrent files (0 uses the configured value)")
	cmd.Flags().Bool("commit", false, "Commit updated sidecars to git afterwards")
	return cmd
}

func makeGenerateRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		workers, _ := cmd.Flags().GetInt("workers")
		commit, _ := cmd.Flags().GetBool("commit")

		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		if workers > 0 {
			e.cfg.Workers = workers
		}

		generator, err := internal.NewGenerator(cmd.Context(), e.cfg)
		if err != nil {
			return fmt.Errorf("create generator: %w", err)
		}

		pipeline := internal.NewPipeline(e.ws, e.cfg, e.tracker, generator)
		pipeline.Force = force
		if len(args) > 0 {
			pipeline.Subpath = args[0]
		}
		pipeline.Progress = func(done, total int) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\r%d/%d files", done, total)
			if done == total {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
		}

		stats, err := pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), stats)

		if commit || e.cfg.AutoCommit {
			repo, err := internal.NewGitRepository(e.ws.Root)
			if err != nil {
				return fmt.Errorf("open git repository: %w", err)
			}
			hash, err := repo.CommitSidecars(cmd.Context(), e.ws, "lod: update descriptions")
			if err != nil {
				return fmt.Errorf("commit sidecars: %w", err)
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Committed sidecars (%s)\n", hash[:7])
			}
		}
		return nil
	}
}
