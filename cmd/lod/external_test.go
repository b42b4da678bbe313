package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeScript drops an executable (or plain) file into dir.
func writeScript(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho ok"), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindExternal(t *testing.T) {
	tmp := t.TempDir()
	script := writeScript(t, tmp, "lod-test", 0755)
	t.Setenv("PATH", tmp+":"+os.Getenv("PATH"))

	path, err := findExternal("test")
	if err != nil {
		t.Fatalf("expected to find lod-test, got error: %v", err)
	}
	if path != script {
		t.Errorf("expected %s, got %s", script, path)
	}
}

func TestFindExternalNotFound(t *testing.T) {
	if _, err := findExternal("nonexistent-command-12345"); err == nil {
		t.Fatal("expected error for nonexistent command")
	}
}

func TestListExternalCommands(t *testing.T) {
	tmp := t.TempDir()
	writeScript(t, tmp, "lod-foo", 0755)
	writeScript(t, tmp, "lod-bar", 0755)
	writeScript(t, tmp, "lod-noexec", 0644)
	writeScript(t, tmp, "other-script", 0755)
	t.Setenv("PATH", tmp+":"+os.Getenv("PATH"))

	names := listExternalCommands()

	found := make(map[string]bool, len(names))
	for _, n := range names {
		found[n] = true
	}
	if !found["foo"] || !found["bar"] {
		t.Errorf("names = %v, want foo and bar included", names)
	}
	if found["noexec"] {
		t.Error("non-executable lod-noexec was listed")
	}
	if found["other-script"] {
		t.Error("unprefixed script was listed")
	}

	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
			break
		}
	}
}

func TestExternalName(t *testing.T) {
	tmp := t.TempDir()
	writeScript(t, tmp, "lod-hello", 0755)
	writeScript(t, tmp, "lod-noexec", 0644)
	writeScript(t, tmp, "plain", 0755)
	if err := os.Mkdir(filepath.Join(tmp, "lod-dir"), 0755); err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"lod-hello":  "hello",
		"lod-noexec": "",
		"plain":      "",
		"lod-dir":    "",
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if got := externalName(entry); got != want[entry.Name()] {
			t.Errorf("externalName(%s) = %q, want %q", entry.Name(), got, want[entry.Name()])
		}
	}
}

func TestBuildExternalEnv(t *testing.T) {
	env := buildExternalEnv("1.0.0")

	got := make(map[string]bool)
	for _, e := range env {
		switch {
		case strings.HasPrefix(e, "LOD_VERSION="):
			got["version"] = true
			if e != "LOD_VERSION=1.0.0" {
				t.Errorf("expected LOD_VERSION=1.0.0, got %s", e)
			}
		case strings.HasPrefix(e, "LOD_BIN="):
			got["bin"] = true
		case strings.HasPrefix(e, "LOD_ROOT="):
			got["root"] = true
		}
	}

	for _, key := range []string{"version", "bin", "root"} {
		if !got[key] {
			t.Errorf("LOD_%s not found in env", strings.ToUpper(key))
		}
	}
}
