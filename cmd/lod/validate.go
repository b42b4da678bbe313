package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewValidateCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that descriptions match the source",
		Long:  `Exit non-zero when any tracked entity has a stale or missing description. Intended for CI and git hooks.`,
		RunE:  makeValidateRunner(load),
	}

	cmd.Flags().Bool("fail-on-stale", false, "Exit non-zero when stale descriptions exist")
	return cmd
}

func makeValidateRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		failOnStale, _ := cmd.Flags().GetBool("fail-on-stale")

		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := buildReport(cmd.Context(), e, "")
		if err != nil {
			return err
		}

		if !report.HasStale() {
			fmt.Fprintf(cmd.OutOrStdout(), "All %d descriptions up to date\n", report.Total)
			return nil
		}

		for _, entry := range report.StaleEntries {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s)\n", entry.Scope, entry.Name, entry.Path)
		}

		if failOnStale || e.cfg.FailOnStale {
			return fmt.Errorf("%d of %d descriptions stale or missing", report.StaleCount, report.Total)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d descriptions need regeneration\n", report.StaleCount, report.Total)
		return nil
	}
}
