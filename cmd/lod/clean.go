package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewCleanCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove all lod state",
		Long:  `Delete the .lod directory including the index database, config, and every sidecar.`,
		RunE:  makeCleanRunner(load),
	}

	cmd.Flags().BoolP("yes", "y", false, "Delete without confirmation")
	return cmd
}

func makeCleanRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := load()
		if err != nil {
			return err
		}
		if err := e.Close(); err != nil {
			return fmt.Errorf("close index: %w", err)
		}

		if !yes && !confirm(cmd, fmt.Sprintf("Delete %s and all descriptions?", e.ws.LodDir)) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}

		if err := os.RemoveAll(e.ws.LodDir); err != nil {
			return fmt.Errorf("remove %s: %w", e.ws.LodDir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", e.ws.LodDir)
		return nil
	}
}
