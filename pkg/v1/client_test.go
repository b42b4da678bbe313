package v1

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/4thel00z/lod/internal"
)

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	ws, err := internal.InitWorkspace(dir)
	if err != nil {
		t.Fatalf("init workspace: %v", err)
	}

	cfg := internal.DefaultConfig()
	cfg.Languages = []string{"python"}
	cfg.Provider = "mock"
	if err := internal.SaveConfig(ws, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	source := "def add(a, b):\n    return a + b\n"
	if err := os.WriteFile(filepath.Join(dir, "calc.py"), []byte(source), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return dir
}

func TestClientNotInitialized(t *testing.T) {
	_, err := New(WithRoot(t.TempDir()))
	if err == nil {
		t.Fatal("expected error for uninitialized root")
	}
}

func TestClientGenerateAndStatus(t *testing.T) {
	dir := setupWorkspace(t)
	ctx := context.Background()

	client, err := New(WithRoot(dir))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	stats, err := client.Generate(ctx, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if stats.Generated != 2 {
		t.Errorf("generated = %d, want 2", stats.Generated)
	}

	report, err := client.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if report.Fresh != 2 || report.Stale != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestClientRead(t *testing.T) {
	dir := setupWorkspace(t)
	ctx := context.Background()

	client, err := New(WithRoot(dir))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if _, err := client.Generate(ctx, false); err != nil {
		t.Fatalf("generate: %v", err)
	}

	descriptions, err := client.Read(ctx, "calc.py")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(descriptions) != 1 {
		t.Fatalf("descriptions = %d, want 1", len(descriptions))
	}
	if descriptions[0].Name != "add" {
		t.Errorf("name = %q", descriptions[0].Name)
	}
	if descriptions[0].Text != "Function add in python." {
		t.Errorf("text = %q", descriptions[0].Text)
	}
}
