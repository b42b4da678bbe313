package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const HookMarker = "# lod: managed hook"

var ErrHookExists = errors.New("hook already exists")

// HookScript returns the shell shim content for a given hook type. The
// shim fails the git operation when stale descriptions exist.
func HookScript(hookType string) string {
	return fmt.Sprintf("#!/bin/sh\n%s (%s)\nexec lod validate --fail-on-stale\n", HookMarker, hookType)
}

// IsManagedHook checks if the given script content was written by lod.
func IsManagedHook(content string) bool {
	return strings.Contains(content, HookMarker)
}

// FindGitDir walks up from dir looking for a .git directory.
func FindGitDir(dir string) (string, error) {
	for {
		gitDir := filepath.Join(dir, ".git")
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			return gitDir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a git repository (no .git found)")
		}
		dir = parent
	}
}

// InstallHook writes the managed shim as .git/hooks/<hookType>. An
// existing unmanaged hook is left alone unless force is set, in which
// case it is backed up next to itself.
func InstallHook(root, hookType string, force bool) error {
	gitDir, err := FindGitDir(root)
	if err != nil {
		return err
	}

	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0755); err != nil {
		return fmt.Errorf("create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, hookType)
	existing, err := os.ReadFile(hookPath)
	if err == nil && !IsManagedHook(string(existing)) {
		if !force {
			return fmt.Errorf("%w: %s", ErrHookExists, hookPath)
		}
		if err := os.WriteFile(hookPath+".backup", existing, 0755); err != nil {
			return fmt.Errorf("back up existing hook: %w", err)
		}
	}

	if err := os.WriteFile(hookPath, []byte(HookScript(hookType)), 0755); err != nil {
		return fmt.Errorf("write hook: %w", err)
	}
	return nil
}

// UninstallHook removes the managed shim and restores a backup when one
// exists. Unmanaged hooks are never touched.
func UninstallHook(root, hookType string) error {
	gitDir, err := FindGitDir(root)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(gitDir, "hooks", hookType)
	content, err := os.ReadFile(hookPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read hook: %w", err)
	}
	if !IsManagedHook(string(content)) {
		return fmt.Errorf("refusing to remove unmanaged hook: %s", hookPath)
	}

	if err := os.Remove(hookPath); err != nil {
		return fmt.Errorf("remove hook: %w", err)
	}

	backup := hookPath + ".backup"
	if data, err := os.ReadFile(backup); err == nil {
		if err := os.WriteFile(hookPath, data, 0755); err != nil {
			return fmt.Errorf("restore backed-up hook: %w", err)
		}
		if err := os.Remove(backup); err != nil {
			return fmt.Errorf("remove backup: %w", err)
		}
	}
	return nil
}
