package main

import (
	"fmt"
	"os"

	"github.com/4thel00z/lod/internal"
	"github.com/spf13/cobra"
)

func NewHookCmd() *cobra.Command {
	hookCmd := &cobra.Command{
		Use:   "hook",
		Short: "Git hook management",
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install a git hook that validates descriptions",
		Long:  `Install a managed hook running "lod validate --fail-on-stale". An existing unmanaged hook is only replaced with --force, which backs it up.`,
		RunE:  runHookInstall,
	}
	installCmd.Flags().String("type", "pre-commit", "Hook type (pre-commit|pre-push)")
	installCmd.Flags().Bool("force", false, "Overwrite existing hook (backs up original)")

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the managed git hook",
		Long:  `Remove the hook installed by lod and restore any backed-up original.`,
		RunE:  runHookUninstall,
	}
	uninstallCmd.Flags().String("type", "pre-commit", "Hook type (pre-commit|pre-push)")

	hookCmd.AddCommand(installCmd, uninstallCmd)
	return hookCmd
}

func runHookInstall(cmd *cobra.Command, _ []string) error {
	hookType, _ := cmd.Flags().GetString("type")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := internal.InstallHook(cwd, hookType, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s hook\n", hookType)
	return nil
}

func runHookUninstall(cmd *cobra.Command, _ []string) error {
	hookType, _ := cmd.Flags().GetString("type")

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	if err := internal.UninstallHook(cwd, hookType); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s hook\n", hookType)
	return nil
}
