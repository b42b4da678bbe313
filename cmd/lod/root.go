package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCmd(version string, load envFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lod",
		Short:         "Staleness-tracked code descriptions",
		Long:          `Generate natural-language descriptions for code entities and keep them in sync with the source through content fingerprints.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	setHelpWithExternals(rootCmd)

	if load != nil {
		addSubcommands(rootCmd, load)
	}

	return rootCmd
}

func addSubcommands(root *cobra.Command, load envFunc) {
	root.AddCommand(
		NewInitCmd(),
		NewGenerateCmd(load),
		NewStatusCmd(load),
		NewValidateCmd(load),
		NewUpdateCmd(load),
		NewReadCmd(load),
		NewSeedCmd(load),
		NewHookCmd(),
		NewWatchCmd(load),
		NewCleanCmd(load),
	)
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printExternalCommands(c)
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (lod-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
