package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/4thel00z/lod/internal"
	"github.com/spf13/cobra"
)

func NewReadCmd(load envFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Show descriptions for a source file",
		Long:  `Print the stored descriptions for a source file, read from its sidecar. Paths are relative to the workspace root.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeReadRunner(load),
	}

	cmd.Flags().String("scope", "", "Only show entities of this scope (function|class|module)")
	return cmd
}

func makeReadRunner(load envFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		scopeFilter, _ := cmd.Flags().GetString("scope")

		e, err := load()
		if err != nil {
			return err
		}
		defer e.Close()

		rel := filepath.Clean(args[0])
		sidecar := e.ws.SidecarPath(rel)
		content, err := os.ReadFile(sidecar)
		if os.IsNotExist(err) {
			return fmt.Errorf("no descriptions for %s (run generate first)", rel)
		}
		if err != nil {
			return fmt.Errorf("read sidecar: %w", err)
		}

		fragments := internal.ParseSidecar(string(content))

		if scopeFilter != "" {
			want, err := internal.ParseScope(scopeFilter)
			if err != nil {
				return fmt.Errorf("scope %q: %w", scopeFilter, err)
			}
			filtered := fragments[:0]
			for _, f := range fragments {
				scope, _ := internal.SignatureInfo(f.Signature)
				if scope == want {
					filtered = append(filtered, f)
				}
			}
			fragments = filtered
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(fragments)
		}

		for _, f := range fragments {
			scope, name := internal.SignatureInfo(f.Signature)
			marker := ""
			if f.Stale {
				marker = " [stale]"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s%s\n    %s\n", scope, name, marker, f.Description)
		}
		return nil
	}
}
