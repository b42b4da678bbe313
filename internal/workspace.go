package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

// LodDirName is the hidden project directory holding all lod state.
const LodDirName = ".lod"

// Workspace is an initialized project root and its .lod directory.
type Workspace struct {
	Root   string
	LodDir string
}

func (w Workspace) ConfigPath() string {
	return filepath.Join(w.LodDir, "config.yaml")
}

func (w Workspace) IndexPath() string {
	return filepath.Join(w.LodDir, "descriptions.db")
}

func (w Workspace) SidecarDir() string {
	return filepath.Join(w.LodDir, "sidecars")
}

// SidecarPath maps a source path relative to the root onto its mirror file.
func (w Workspace) SidecarPath(rel string) string {
	return filepath.Join(w.SidecarDir(), rel+".lod")
}

// SourcePath maps a sidecar file back onto its source path.
func (w Workspace) SourcePath(sidecar string) (string, error) {
	rel, err := filepath.Rel(w.SidecarDir(), sidecar)
	if err != nil {
		return "", fmt.Errorf("relativize sidecar path: %w", err)
	}
	rel = rel[:len(rel)-len(".lod")]
	return filepath.Join(w.Root, rel), nil
}

// FindWorkspace walks up from start looking for a .lod directory.
func FindWorkspace(start string) (Workspace, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolve start path: %w", err)
	}

	for {
		lodDir := filepath.Join(dir, LodDirName)
		info, err := os.Stat(lodDir)
		if err == nil && info.IsDir() {
			return Workspace{Root: dir, LodDir: lodDir}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Workspace{}, ErrNotInitialized
		}
		dir = parent
	}
}

// InitWorkspace creates the .lod directory tree under root.
func InitWorkspace(root string) (Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolve root: %w", err)
	}

	ws := Workspace{Root: abs, LodDir: filepath.Join(abs, LodDirName)}
	if err := os.MkdirAll(ws.SidecarDir(), 0755); err != nil {
		return Workspace{}, fmt.Errorf("create sidecar directory: %w", err)
	}
	return ws, nil
}
