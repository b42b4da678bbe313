package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const externalPrefix = "lod-"

// findExternal resolves a subcommand name to its lod-<name> binary.
func findExternal(name string) (string, error) {
	path, err := exec.LookPath(externalPrefix + name)
	if err != nil {
		return "", fmt.Errorf("unknown command %q: %s%s not found in PATH", name, externalPrefix, name)
	}
	return path, nil
}

// listExternalCommands scans PATH for executable lod-* binaries and
// returns their subcommand names, sorted, first hit per name winning.
func listExternalCommands() []string {
	seen := make(map[string]bool)
	var names []string

	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := externalName(entry)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

// externalName maps a directory entry to its subcommand name, or ""
// when the entry is not an executable lod-* binary.
func externalName(entry os.DirEntry) string {
	if entry.IsDir() || !strings.HasPrefix(entry.Name(), externalPrefix) {
		return ""
	}
	info, err := entry.Info()
	if err != nil || info.Mode()&0111 == 0 {
		return ""
	}
	return strings.TrimPrefix(entry.Name(), externalPrefix)
}

func executeExternal(ctx context.Context, name string, args []string, version string) error {
	path, err := findExternal(name)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = buildExternalEnv(version)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func buildExternalEnv(version string) []string {
	bin, _ := os.Executable()
	cwd, _ := os.Getwd()

	return append(os.Environ(),
		"LOD_VERSION="+version,
		"LOD_BIN="+bin,
		"LOD_ROOT="+cwd,
	)
}
