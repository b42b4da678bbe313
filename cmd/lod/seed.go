package main

import (
	"fmt"

	"github.com/4thel00z/lod/internal"
	"github.com/spf13/cobra"
)

func NewSeedCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Rebuild the index from sidecar files",
		Long:  `Recover index records from committed sidecars after the database was lost. Seeded records carry no fingerprint history, so revert detection resumes only after fresh generations.`,
		RunE:  makeSeedRunner(load),
	}

	return cmd
}

func makeSeedRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		seeded, err := internal.SeedIndex(cmd.Context(), e.ws, e.index)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d description(s) from sidecars\n", seeded)
		return nil
	}
}
