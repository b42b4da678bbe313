package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/4thel00z/lod/internal"
	"github.com/spf13/cobra"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize description tracking",
		Long:  `Create the .lod directory with its config, index database, and sidecar tree.`,
		RunE:  runInit,
	}

	cmd.Flags().StringSlice("languages", []string{"go"}, "Languages to track (go,python)")
	cmd.Flags().String("provider", "mock", "LLM provider (mock|openai|anthropic|openrouter|ollama)")
	cmd.Flags().Bool("force", false, "Reinitialize, rewriting the config of an existing workspace")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	languages, _ := cmd.Flags().GetStringSlice("languages")
	provider, _ := cmd.Flags().GetString("provider")
	force, _ := cmd.Flags().GetBool("force")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	lodDir := filepath.Join(cwd, internal.LodDirName)
	if _, err := os.Stat(lodDir); err == nil && !force {
		return fmt.Errorf("already initialized at %s", lodDir)
	}

	ws, err := internal.InitWorkspace(cwd)
	if err != nil {
		return err
	}

	cfg := internal.DefaultConfig()
	cfg.Languages = languages
	cfg.Provider = provider
	if err := internal.SaveConfig(ws, cfg); err != nil {
		return err
	}

	index, err := internal.OpenIndex(ws.IndexPath())
	if err != nil {
		return err
	}
	if err := index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized lod workspace at %s (languages: %s)\n",
		ws.LodDir, strings.Join(languages, ", "))
	return nil
}
